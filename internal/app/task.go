package app

import (
	"sync"
	"time"
)

// Task is a cancellable deferred action. The timer only posts the action;
// post must run it on the goroutine that owns the game state, where the
// cancellation token is checked once more before fn runs.
type Task struct {
	mu    sync.Mutex
	timer *time.Timer
	token uint64
}

// Schedule arranges for fn to run through post after d, replacing any
// run that is still pending.
func (t *Task) Schedule(d time.Duration, post func(func()), fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.token++
	tok := t.token
	t.timer = time.AfterFunc(d, func() {
		post(func() {
			if t.claim(tok) {
				fn()
			}
		})
	})
}

// Cancel invalidates the pending run, if any, and reports whether one was
// pending.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := t.timer != nil
	t.stopLocked()
	t.token++
	return pending
}

func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Task) claim(tok uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok != t.token || t.timer == nil {
		return false
	}
	t.timer = nil
	return true
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
