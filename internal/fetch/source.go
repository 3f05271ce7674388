package fetch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"econdata/pkg/contracts/domain"
)

// Range bounds the observation dates of a fetch. A zero Start means "from
// the beginning of the series"; a zero End means "up to the latest datum".
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Source is one upstream economic-data provider. Implementations must not
// mutate caller-supplied arguments and must return series that satisfy
// domain.Series.Validate with all observation dates inside r.
type Source interface {
	// Name identifies the provider in errors, logs and metrics.
	Name() string
	// FetchSeries fetches one identifier, concatenating any upstream
	// pagination before returning.
	FetchSeries(ctx context.Context, id string, r Range) (*domain.Series, error)
	// FetchMultiple fetches several identifiers, isolating per-identifier
	// failures in the returned BatchResult.
	FetchMultiple(ctx context.Context, ids []string, r Range) *BatchResult
}

// BatchResult carries the outcome of a multi-identifier fetch: the series
// that succeeded and, separately, the specific error for each identifier
// that failed.
type BatchResult struct {
	Series map[string]*domain.Series
	Errors map[string]error
}

// NewBatchResult returns an empty result.
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Series: make(map[string]*domain.Series),
		Errors: make(map[string]error),
	}
}

// Add records a successful fetch.
func (b *BatchResult) Add(id string, s *domain.Series) {
	b.Series[id] = s
}

// AddError records a failed fetch.
func (b *BatchResult) AddError(id string, err error) {
	b.Errors[id] = err
}

// Failed reports whether any identifier failed.
func (b *BatchResult) Failed() bool {
	return len(b.Errors) > 0
}

// SucceededIDs returns the identifiers that fetched successfully, sorted.
func (b *BatchResult) SucceededIDs() []string {
	ids := make([]string, 0, len(b.Series))
	for id := range b.Series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FailedIDs returns the identifiers that failed, sorted.
func (b *BatchResult) FailedIDs() []string {
	ids := make([]string, 0, len(b.Errors))
	for id := range b.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the successful series sorted by identifier, for callers that
// feed the batch straight into a merge.
func (b *BatchResult) All() []domain.Series {
	ids := b.SucceededIDs()
	out := make([]domain.Series, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.Series[id])
	}
	return out
}

// Err returns nil when every identifier succeeded, otherwise the joined
// per-identifier errors in identifier order.
func (b *BatchResult) Err() error {
	if !b.Failed() {
		return nil
	}
	joined := make([]error, 0, len(b.Errors))
	for _, id := range b.FailedIDs() {
		joined = append(joined, fmt.Errorf("%s: %w", id, b.Errors[id]))
	}
	return errors.Join(joined...)
}

// FetchEach runs fn once per identifier, sequentially and in argument order,
// collecting outcomes into a BatchResult. Duplicate identifiers are fetched
// once. A cancelled context fails the remaining identifiers with the context
// error instead of aborting the batch silently.
func FetchEach(ctx context.Context, ids []string, r Range,
	fn func(ctx context.Context, id string, r Range) (*domain.Series, error)) *BatchResult {

	result := NewBatchResult()
	for _, id := range dedup(ids) {
		if err := ctx.Err(); err != nil {
			result.AddError(id, err)
			continue
		}
		s, err := fn(ctx, id, r)
		if err != nil {
			result.AddError(id, err)
			continue
		}
		result.Add(id, s)
	}
	return result
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
