package game

import (
	"sync"
	"time"
)

// Timer is a one-shot countdown that fires at most once. Cancel is
// idempotent and safe after firing.
type Timer interface {
	Cancel()
}

// TimerFactory exists so tests can capture scheduled timers and fire
// them deterministically.
type TimerFactory interface {
	NewTimer(d time.Duration, fire func()) Timer
}

type timerFactory struct{}

func NewTimerFactory() TimerFactory {
	return timerFactory{}
}

func (timerFactory) NewTimer(d time.Duration, fire func()) Timer {
	t := &oneShotTimer{}
	t.inner = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.cancelled || t.fired {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()
		fire()
	})
	return t
}

// oneShotTimer makes the cancel-vs-fire race explicit: whoever takes
// the mutex first wins, so a fire after Cancel is a guaranteed no-op.
type oneShotTimer struct {
	mu        sync.Mutex
	inner     *time.Timer
	cancelled bool
	fired     bool
}

func (t *oneShotTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.inner.Stop()
}
