package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Runner owns the poll timer. At most one loop is ever scheduled:
// starting a new loop always cancels the previous one first, so the
// invariant lives in the type instead of in callers remembering to
// clear a handle.
type Runner struct {
	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

const DefaultPollInterval = time.Second

func NewRunner(interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Runner{interval: interval}
}

// Start replaces any running loop with a new one that calls tick on a
// fixed cadence until tick returns false or the context is cancelled.
func (r *Runner) Start(ctx context.Context, tick func(context.Context) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if !tick(loopCtx) {
					return
				}
			}
		}
	}()
}

// Stop cancels the running loop, if any, and waits for it to exit. It
// is safe to call repeatedly.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Runner) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.done != nil {
		<-r.done
		r.done = nil
	}
}

// Wait blocks until the current loop exits on its own.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Active reports whether a loop is currently scheduled.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}
