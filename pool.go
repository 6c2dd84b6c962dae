package sitehost

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// workerPool bounds how many heavy filesystem jobs (extraction, size walks,
// archive building) run at once.
type workerPool struct {
	sem *semaphore.Weighted
}

func newWorkerPool(workers int) *workerPool {
	return &workerPool{sem: semaphore.NewWeighted(int64(workers))}
}

// Run waits for a free slot, honoring ctx, then runs fn with the same ctx.
func (p *workerPool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker: %w", err)
	}
	defer p.sem.Release(1)

	return fn(ctx)
}
