package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOneShotTimer_Fires(t *testing.T) {
	t.Parallel()
	fired := make(chan struct{})
	NewTimerFactory().NewTimer(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestOneShotTimer_CancelPreventsFire(t *testing.T) {
	t.Parallel()
	var fires atomic.Int32
	timer := NewTimerFactory().NewTimer(20*time.Millisecond, func() { fires.Add(1) })
	timer.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}

func TestOneShotTimer_CancelIdempotent(t *testing.T) {
	t.Parallel()
	timer := NewTimerFactory().NewTimer(time.Hour, func() {})
	timer.Cancel()
	timer.Cancel()
}

func TestOneShotTimer_CancelAfterFire(t *testing.T) {
	t.Parallel()
	fired := make(chan struct{})
	timer := NewTimerFactory().NewTimer(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	timer.Cancel()
}
