package importer

// batch.go provides the generic concurrency-bounded building block for batch
// operations. Items are grouped into fixed-size batches; operations within a
// batch run concurrently with no completion-order guarantee, but results are
// written back by original index so callers always observe input order.
// Per-item failures are collected, never propagated as a batch failure.

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finvolo/ledger/internal/apperr"
)

// IndexedError pairs a failed item's original index with its error.
type IndexedError struct {
	Index int
	Err   error
}

// BatchResult holds per-item outcomes of a batch run. Results is a sparse
// slice indexed by original position: nil entries mark failed items, whose
// errors appear in Errors.
type BatchResult[R any] struct {
	Results []*R
	Errors  []IndexedError
}

// Batch applies op to every item, size items at a time, wrapping each
// invocation in retry-with-backoff under cfg. The next batch starts only
// after every operation in the current batch has settled. A cancelled
// context stops dispatching further batches; already-dispatched operations
// run to completion.
func Batch[T, R any](ctx context.Context, items []T, size int, cfg apperr.RetryConfig, op func(context.Context, T) (R, error)) BatchResult[R] {
	result := BatchResult[R]{Results: make([]*R, len(items))}
	if len(items) == 0 {
		return result
	}
	if size <= 0 {
		size = 1
	}

	var mu sync.Mutex

	for start := 0; start < len(items); start += size {
		if ctx.Err() != nil {
			mu.Lock()
			for i := start; i < len(items); i++ {
				result.Errors = append(result.Errors, IndexedError{Index: i, Err: apperr.Normalize(ctx.Err())})
			}
			mu.Unlock()
			break
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				value, err := apperr.Retry(ctx, cfg, func(ctx context.Context) (R, error) {
					return op(ctx, items[i])
				}, nil)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Errors = append(result.Errors, IndexedError{Index: i, Err: err})
					return nil
				}
				result.Results[i] = &value
				return nil
			})
		}
		_ = g.Wait()
	}

	return result
}
