package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolStopped is returned when work is submitted after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// Pool runs CPU-bound jobs on a fixed set of worker goroutines. The job
// channel is unbuffered: a submit only succeeds once a worker has taken the
// job, so at most numWorkers jobs run at any time and no job is ever left
// stranded in a buffer after Stop.
type Pool struct {
	jobs    chan func()
	quit    chan struct{}
	workers int
	log     zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan func()),
		quit:    make(chan struct{}),
		workers: numWorkers,
		log:     log,
	}
}

// Start launches all worker goroutines.
func (p *Pool) Start() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker()
	}
	p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
}

// Stop signals workers to exit and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.workers }

func (p *Pool) submit(ctx context.Context, job func()) error {
	select {
	case <-p.quit:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

func (p *Pool) runWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			job()
		}
	}
}

// Run executes fn on the pool and waits for its result. If ctx is done
// before a worker picks the job up, fn never runs. If ctx is done while fn
// runs, Run returns ctx.Err() and the result is discarded.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	out := make(chan result, 1)

	err := p.submit(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().Interface("panic", r).Msg("worker job panicked")
				out <- result{err: fmt.Errorf("worker job panicked: %v", r)}
			}
		}()
		v, err := fn()
		out <- result{val: v, err: err}
	})
	if err != nil {
		var zero T
		return zero, err
	}

	select {
	case r := <-out:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
