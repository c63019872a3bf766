package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsAllTasksBeforeStop(t *testing.T) {
	p := NewPool(4, 8)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int64(100), n.Load())
}

func TestPool_SurvivesPanic(t *testing.T) {
	p := NewPool(1, 0)
	var n atomic.Int64
	p.Submit(func() { panic("boom") })
	p.Submit(func() { n.Add(1) })
	p.Stop()
	assert.Equal(t, int64(1), n.Load())
}
