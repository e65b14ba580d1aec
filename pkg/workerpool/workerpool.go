// Package workerpool fans independent work items out to a bounded set of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Process runs process over items with at most workerCount goroutines.
// The first error cancels the remaining work, invokes onCancel once and is returned.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
	onCancel func(),
) error {
	return run(ctx, workerCount, len(items), func(ctx context.Context, i int) error {
		return process(ctx, items[i])
	}, onCancel)
}

// Map is Process with one result per item, returned in input order.
// Results of items that did not run are left as the zero value.
func Map[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	fn func(context.Context, T) (R, error),
) ([]R, error) {
	results := make([]R, len(items))
	err := run(ctx, workerCount, len(items), func(ctx context.Context, i int) error {
		r, err := fn(ctx, items[i])
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	}, nil)
	return results, err
}

func run(ctx context.Context, workerCount, n int, process func(context.Context, int) error, onCancel func()) error {
	if n == 0 {
		return ctx.Err()
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > n {
		workerCount = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			if onCancel != nil {
				onCancel()
			}
			cancel()
		})
	}

	tasks := make(chan int)
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if err := process(ctx, i); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
