package scrape

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Accumulator collects rows from many concurrent fetches. Each Append keeps
// its rows contiguous and in order.
type Accumulator[T any] struct {
	mu   sync.Mutex
	rows []T
}

func (a *Accumulator[T]) Append(rows ...T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, rows...)
}

func (a *Accumulator[T]) Rows() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows
}

type CollectOptions struct {
	// Limit is the most items in flight at once (DefaultLimit if unset)
	Limit int
	// OnItemDone fires after each item is fetched and parsed
	OnItemDone func()
	// OnComplete fires once, after every started item has returned
	OnComplete func()
}

// Collect runs fn for every item with at most opts.Limit running at a time
// and gathers the rows they return. The first error cancels the rest and is
// returned without any partial result.
func Collect[I, T any](ctx context.Context, items []I, fn func(context.Context, I) ([]T, error), opts CollectOptions) ([]T, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	acc := &Accumulator[T]{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		item := item
		g.Go(func() error {
			// Don't start new work once another item has failed
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := fn(ctx, item)
			if err != nil {
				return err
			}
			acc.Append(rows...)
			if opts.OnItemDone != nil {
				opts.OnItemDone()
			}
			return nil
		})
	}

	err := g.Wait()
	if opts.OnComplete != nil {
		opts.OnComplete()
	}
	if err != nil {
		return nil, err
	}
	return acc.Rows(), nil
}
