package series

import (
	"fmt"
	"sort"
	"time"

	"econdata/pkg/contracts/domain"

	"github.com/guregu/null/v6"
)

// Merge aligns the given series on the sorted union of their observation
// dates and returns one table column per series, named by series ID. Cells
// where a series has no observation default to missing; policy decides
// whether they stay that way.
//
// Column order follows argument order; the table content is otherwise
// independent of input order. Every input must satisfy the series invariant
// and IDs must be unique.
func Merge(list []domain.Series, policy FillPolicy) (*domain.Table, error) {
	seen := make(map[string]struct{}, len(list))
	for i := range list {
		s := &list[i]
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("merge input %d: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("merge: duplicate series id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	axis := unionDates(list)
	table, err := domain.NewTable(axis)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	index := make(map[time.Time]int, len(axis))
	for i, d := range axis {
		index[d] = i
	}

	for i := range list {
		s := &list[i]
		col := make([]null.Float, len(axis))
		for _, obs := range s.Observations {
			col[index[obs.Date]] = obs.Value
		}
		switch policy {
		case ForwardFill:
			col = forwardFill(col)
		case InterpolateLinear:
			col = interpolateLinear(axis, col)
		}
		if err := table.AddColumn(s.ID, col); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}

	if policy == DropIncompleteRows {
		table = dropIncomplete(table)
	}
	return table, nil
}

func unionDates(list []domain.Series) []time.Time {
	set := make(map[time.Time]struct{})
	for i := range list {
		for _, obs := range list[i].Observations {
			set[obs.Date] = struct{}{}
		}
	}
	axis := make([]time.Time, 0, len(set))
	for d := range set {
		axis = append(axis, d)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}

func dropIncomplete(t *domain.Table) *domain.Table {
	return t.FilterRows(func(i int) bool {
		for _, v := range t.Row(i) {
			if !v.Valid {
				return false
			}
		}
		return true
	})
}
