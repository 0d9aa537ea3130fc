package api

import (
	"context"
	"fmt"
	"sync"
)

type dispatchJob struct {
	fn   func()
	done chan struct{}
}

// putDispatcher runs PUT round trips on a fixed set of worker goroutines.
// Callers block until their job finishes.
type putDispatcher struct {
	jobs      chan dispatchJob
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newPutDispatcher(workers int) (*putDispatcher, error) {
	if workers < 1 {
		return nil, fmt.Errorf("put dispatcher needs at least one worker, got %d", workers)
	}
	d := &putDispatcher{
		jobs: make(chan dispatchJob),
		quit: make(chan struct{}),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d, nil
}

func (d *putDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobs:
			job.fn()
			close(job.done)
		case <-d.quit:
			return
		}
	}
}

// run hands fn to a worker and waits for it to finish. fn is not run when
// ctx ends or the dispatcher closes before a worker picks it up.
func (d *putDispatcher) run(ctx context.Context, fn func()) error {
	job := dispatchJob{fn: fn, done: make(chan struct{})}
	select {
	case d.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrClientClosed
	}
	<-job.done
	return nil
}

func (d *putDispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.quit)
	})
	d.wg.Wait()
}
