package fetch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "econdata/internal/errors"
	"econdata/pkg/contracts/domain"
)

// fakeSource serves canned outcomes with a per-call delay so concurrent
// completion order differs from submission order.
type fakeSource struct {
	delays   map[string]time.Duration
	failing  map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSeries(ctx context.Context, id string, r Range) (*domain.Series, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if d, ok := f.delays[id]; ok {
		time.Sleep(d)
	}
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	return testSeries(id), nil
}

func (f *fakeSource) FetchMultiple(ctx context.Context, ids []string, r Range) *BatchResult {
	return FetchEach(ctx, ids, r, f.FetchSeries)
}

func TestParallel_SameContentAsSequential(t *testing.T) {
	src := &fakeSource{
		delays: map[string]time.Duration{
			"SLOW": 30 * time.Millisecond,
			"MID":  10 * time.Millisecond,
		},
		failing: map[string]error{
			"BAD": apierrors.InvalidIdentifier("fake", "BAD", "unknown"),
		},
	}
	ids := []string{"SLOW", "BAD", "MID", "FAST"}

	sequential := src.FetchMultiple(context.Background(), ids, Range{})
	parallel := Parallel(src, 4).FetchMultiple(context.Background(), ids, Range{})

	assert.Equal(t, sequential.SucceededIDs(), parallel.SucceededIDs())
	assert.Equal(t, sequential.FailedIDs(), parallel.FailedIDs())
	for _, id := range sequential.SucceededIDs() {
		assert.Equal(t, sequential.Series[id], parallel.Series[id])
	}
	assert.True(t, apierrors.IsInvalidIdentifier(parallel.Errors["BAD"]))
}

func TestParallel_RespectsLimit(t *testing.T) {
	src := &fakeSource{
		delays: map[string]time.Duration{
			"A": 20 * time.Millisecond, "B": 20 * time.Millisecond,
			"C": 20 * time.Millisecond, "D": 20 * time.Millisecond,
		},
	}
	result := Parallel(src, 2).FetchMultiple(context.Background(), []string{"A", "B", "C", "D"}, Range{})

	require.False(t, result.Failed())
	assert.LessOrEqual(t, src.maxSeen.Load(), int32(2))
}

func TestParallel_ZeroLimitFallsBack(t *testing.T) {
	src := &fakeSource{}
	assert.Equal(t, src, Parallel(src, 0), "limit below 1 returns the source unchanged")
}

func TestParallel_Deduplicates(t *testing.T) {
	src := &fakeSource{}
	result := Parallel(src, 3).FetchMultiple(context.Background(), []string{"X", "X", "Y"}, Range{})
	assert.Equal(t, []string{"X", "Y"}, result.SucceededIDs())
}
