package dispatch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor is the injectable spawner capability spec.md §5 requires: the
// dispatcher must work whether a host wants every request handler run on
// its own goroutine immediately, or wants concurrent handlers bounded by
// a worker pool. Implementations must not block Spawn itself; the bound,
// if any, is enforced inside the spawned function.
type Executor interface {
	// Spawn runs fn, returning immediately. fn receives the ctx given to
	// Dispatcher.Listen; Dispatcher.Close does not cancel it.
	Spawn(ctx context.Context, fn func(context.Context))
}

// GoExecutor spawns one goroutine per call with no bound, matching a
// single-threaded-equivalent "run everything concurrently" policy.
type GoExecutor struct{}

func (GoExecutor) Spawn(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}

// PoolExecutor bounds the number of concurrently running handler
// goroutines using golang.org/x/sync/semaphore, the same package
// jinterlante1206-AleutianLocal depends on directly for its own
// concurrent pipeline. Calls beyond the bound block inside the spawned
// goroutine (on the semaphore acquire), not inside Spawn, so Spawn itself
// never blocks the input loop. Once ctx is done, functions still waiting
// for a slot run without one, so every spawned function runs exactly once.
type PoolExecutor struct {
	sem *semaphore.Weighted
}

// NewPoolExecutor builds a PoolExecutor that runs at most max handler
// functions concurrently.
func NewPoolExecutor(max int64) *PoolExecutor {
	return &PoolExecutor{sem: semaphore.NewWeighted(max)}
}

func (p *PoolExecutor) Spawn(ctx context.Context, fn func(context.Context)) {
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			fn(ctx)
			return
		}
		defer p.sem.Release(1)
		fn(ctx)
	}()
}
