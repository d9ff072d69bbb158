package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerStopsWhenTickReturnsFalse(t *testing.T) {
	r := NewRunner(time.Millisecond)
	var ticks atomic.Int64

	r.Start(context.Background(), func(ctx context.Context) bool {
		return ticks.Add(1) < 3
	})
	r.Wait()

	if got := ticks.Load(); got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}
	if r.Active() {
		t.Fatalf("runner still active after tick returned false")
	}
}

func TestRunnerStartReplacesPreviousLoop(t *testing.T) {
	r := NewRunner(time.Millisecond)
	var first, second atomic.Int64

	r.Start(context.Background(), func(ctx context.Context) bool {
		first.Add(1)
		return true
	})

	// Start waits for the old loop to exit before scheduling the new
	// one, so the first counter is frozen from here on.
	r.Start(context.Background(), func(ctx context.Context) bool {
		second.Add(1)
		return true
	})
	frozen := first.Load()

	deadline := time.After(time.Second)
	for second.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("second loop never ticked")
		case <-time.After(time.Millisecond):
		}
	}
	if first.Load() != frozen {
		t.Fatalf("first loop ticked after being replaced")
	}

	r.Stop()
	if r.Active() {
		t.Fatalf("runner active after Stop")
	}
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	r := NewRunner(time.Millisecond)
	r.Stop()
	r.Stop()

	r.Start(context.Background(), func(ctx context.Context) bool { return true })
	r.Stop()
	r.Stop()
	if r.Active() {
		t.Fatalf("runner active after repeated Stop")
	}
}

func TestRunnerHonorsContextCancel(t *testing.T) {
	r := NewRunner(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	r.Start(ctx, func(ctx context.Context) bool { return true })
	cancel()
	r.Wait()

	if r.Active() {
		t.Fatalf("runner active after context cancel")
	}
}
