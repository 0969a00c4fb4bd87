// Package worker bounds the number of concurrently running tasks.
package worker

import (
	"context"
	"sync"
)

// Pool runs submitted tasks on at most size goroutines at a time.
type Pool struct {
	wg      sync.WaitGroup
	workers chan struct{}
}

// NewPool creates a pool with the given number of workers; size < 1 means 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: make(chan struct{}, size),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return cap(p.workers)
}

// Submit blocks until a worker is free, then runs task on it. It returns
// ctx.Err() without running task if ctx ends first.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	select {
	case p.workers <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.workers
			p.wg.Done()
		}()

		task()
	}()
	return nil
}

// Wait waits for all submitted tasks to complete.
func (p *Pool) Wait() {
	p.wg.Wait()
}
