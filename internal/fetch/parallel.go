package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// parallelSource wraps a Source so FetchMultiple issues its per-identifier
// fetches concurrently. Results are assembled keyed by identifier, so the
// outcome is byte-for-byte the same as the sequential path; only latency
// changes.
type parallelSource struct {
	Source
	limit int
}

// Parallel returns a Source whose FetchMultiple runs at most limit fetches
// at a time. A limit below 1 falls back to the wrapped source's sequential
// behavior.
func Parallel(src Source, limit int) Source {
	if limit < 1 {
		return src
	}
	return &parallelSource{Source: src, limit: limit}
}

func (p *parallelSource) FetchMultiple(ctx context.Context, ids []string, r Range) *BatchResult {
	result := NewBatchResult()

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.limit)

	for _, id := range dedup(ids) {
		g.Go(func() error {
			s, err := p.Source.FetchSeries(ctx, id, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.AddError(id, err)
			} else {
				result.Add(id, s)
			}
			// Failures stay in the result; returning them would cancel
			// the siblings and violate batch isolation.
			return nil
		})
	}
	g.Wait()
	return result
}
