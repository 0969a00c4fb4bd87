package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := NewPool(3)
	var done atomic.Int32

	for i := 0; i < 20; i++ {
		if err := p.Submit(context.Background(), func() { done.Add(1) }); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	p.Wait()

	if got := done.Load(); got != 20 {
		t.Errorf("completed %d tasks, want 20", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2)
	var running, peak atomic.Int32

	for i := 0; i < 10; i++ {
		p.Submit(context.Background(), func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	p.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency %d exceeds pool size 2", got)
	}
}

func TestSubmitHonorsContext(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	p.Submit(context.Background(), func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ran := false
	err := p.Submit(ctx, func() { ran = true })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit = %v, want deadline exceeded", err)
	}

	close(release)
	p.Wait()
	if ran {
		t.Error("task must not run after its context ended")
	}
}

func TestNewPoolMinimumSize(t *testing.T) {
	if got := NewPool(0).Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}
