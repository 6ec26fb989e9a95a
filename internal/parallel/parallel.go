// Package parallel provides bulk-synchronous parallel iteration over index
// ranges.
//
// Index construction is a sequence of data-parallel passes over vertices or
// edges with a barrier between passes. For returns only after every chunk of
// the current pass has completed, which is that barrier.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// minChunk bounds scheduling overhead for tiny work items.
const minChunk = 64

// For runs body over [0, n) on a fixed pool of workers and waits for all of
// them. Chunks are claimed from a shared atomic cursor, so the pass balances
// load across workers regardless of per-index cost skew.
//
// workers <= 0 means GOMAXPROCS. body must be safe to call concurrently for
// disjoint ranges. Cancellation is checked between chunks, never inside one;
// a cancelled pass returns ctx.Err() after in-flight chunks drain.
func For(ctx context.Context, workers, n int, body func(start, end int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	chunk := n / (workers * 8)
	if chunk < minChunk {
		chunk = minChunk
	}

	if workers == 1 || n <= chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		body(0, n)
		return nil
	}

	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := int(cursor.Add(int64(chunk))) - chunk
				if start >= n {
					return nil
				}
				end := start + chunk
				if end > n {
					end = n
				}
				body(start, end)
			}
		})
	}
	return g.Wait()
}

// ForEach is For with a per-index body.
func ForEach(ctx context.Context, workers, n int, body func(i int)) error {
	return For(ctx, workers, n, func(start, end int) {
		for i := start; i < end; i++ {
			body(i)
		}
	})
}

// Each runs body over [0, n) like ForEach, but without cancellation: for pure
// in-memory passes that hold no context and cannot fail.
func Each(workers, n int, body func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	chunk := n / (workers * 8)
	if chunk < minChunk {
		chunk = minChunk
	}

	if workers == 1 || n <= chunk {
		for i := 0; i < n; i++ {
			body(i)
		}
		return
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				start := int(cursor.Add(int64(chunk))) - chunk
				if start >= n {
					return
				}
				end := start + chunk
				if end > n {
					end = n
				}
				for i := start; i < end; i++ {
					body(i)
				}
			}
		}()
	}
	wg.Wait()
}
