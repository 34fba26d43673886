package poller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOut calls fn once for every index in [0, n), concurrently.
//
// FanOut returns only after every call has returned, and reports the first
// non-nil error. A failing call does not cancel its siblings: they run to
// completion so their connections are released normally. A positive limit
// caps how many calls run at once; zero means no cap.
func FanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(ctx, i)
		})
	}

	return g.Wait()
}
