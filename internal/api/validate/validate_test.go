package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Note   string `json:"note,omitempty" validate:"required"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{UserID: 1, Note: "x"}))

	err := Struct(sample{UserID: -1})
	require.Error(t, err)
	var errs Errs
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errs{
		{Field: "user_id", Msg: "must be > 0"},
		{Field: "note", Msg: "required"},
	}, errs)
	assert.Equal(t, "user_id: must be > 0; note: required", err.Error())
}
