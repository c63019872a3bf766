package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "prod", "")
	log.Debug("hidden")
	log.Info("deposit committed", "user_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "deposit committed", rec["msg"])
	assert.Equal(t, float64(7), rec["user_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("prod", "WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("prod", ""))
	assert.Equal(t, slog.LevelDebug, parseLevel("dev", "bogus"))
}
