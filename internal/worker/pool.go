// Package worker runs bounded batches of tasks on an ants goroutine pool.
// Notification fanout and broadcasts go through it so one slow recipient
// never holds up the others and the goroutine count stays capped.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Task is one unit of work. It receives the context passed to RunAll.
type Task func(ctx context.Context) error

const DefaultPoolSize = 16

type Pool struct {
	pool *ants.Pool
	name string
}

func NewPool(name string, size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}

	panicHandler := func(p interface{}) {
		logx.L().Error("worker panic recovered",
			zap.String("pool", name),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	p, err := ants.NewPool(size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", name, err)
	}

	return &Pool{pool: p, name: name}, nil
}

/*
RunAll submits every task and blocks until all of them finished. The result
has one entry per task, in order: nil on success, otherwise the task's error,
the panic it raised, or the reason it could not be scheduled.

A task whose context is already cancelled when a worker picks it up is not run
and reports ctx.Err().
*/
func (p *Pool) RunAll(ctx context.Context, tasks ...Task) []error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		i, task := i, task
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("task panicked: %v", r)
					logx.FromContext(ctx).Error("worker task panicked",
						zap.String("pool", p.name),
						zap.Any("panic", r),
					)
				}
			}()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			errs[i] = task(ctx)
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrPoolClosed
			}
			errs[i] = err
		}
	}

	wg.Wait()
	return errs
}

// Running returns the number of workers currently executing tasks.
func (p *Pool) Running() int {
	return p.pool.Running()
}

func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Shutdown waits up to timeout for running tasks, then releases the pool.
func (p *Pool) Shutdown(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logx.L().Warn("worker pool shutdown timeout",
			zap.String("pool", p.name),
			zap.Error(err),
		)
	}
}
