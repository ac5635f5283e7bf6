// Package poll runs fixed-delay periodic checks bound to a context.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// Func is one iteration of a poll. Returning false stops the task until it is
// started again.
type Func func(ctx context.Context) bool

// Task reschedules its Func a fixed delay after each iteration completes.
// At most one loop per Task runs at any time.
type Task struct {
	name     string
	interval time.Duration
	fn       Func

	mu      sync.Mutex
	running bool
	rearm   bool
}

// New creates a stopped task.
func New(name string, interval time.Duration, fn Func) *Task {
	return &Task{name: name, interval: interval, fn: fn}
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Running reports whether the loop is currently scheduled.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start schedules the loop on wg unless ctx is done. If the loop is already
// running it is kept alive past its next stop request instead. The first
// iteration fires after one interval. It returns whether a new loop was
// started.
//
// The caller must not let Start race with canceling ctx and waiting on wg.
func (t *Task) Start(ctx context.Context, wg *conc.WaitGroup) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	if t.running {
		t.rearm = true
		return false
	}
	t.running = true
	t.rearm = false

	wg.Go(func() {
		t.loop(ctx)
	})
	return true
}

func (t *Task) loop(ctx context.Context) {
	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.stop(true)
			return
		case <-timer.C:
		}

		if ctx.Err() == nil && t.fn(ctx) {
			timer.Reset(t.interval)
			continue
		}
		if t.stop(ctx.Err() != nil) {
			return
		}
		timer.Reset(t.interval)
	}
}

// stop marks the loop as finished unless a Start arrived while it was
// running. It reports whether the loop should exit.
func (t *Task) stop(force bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rearm && !force {
		t.rearm = false
		return false
	}
	t.running = false
	t.rearm = false
	return true
}
