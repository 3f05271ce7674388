package series

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// FillPolicy decides what happens to cells left missing after alignment.
type FillPolicy int

const (
	// LeaveMissing keeps gaps as missing cells. The default.
	LeaveMissing FillPolicy = iota
	// ForwardFill carries the last observed value forward; a leading gap
	// stays missing.
	ForwardFill
	// InterpolateLinear fills interior gaps linearly in time between the
	// surrounding observed values; leading and trailing gaps stay missing.
	InterpolateLinear
	// DropIncompleteRows removes every row where any column is missing.
	DropIncompleteRows
)

// String returns the policy name used in configuration and logs.
func (p FillPolicy) String() string {
	switch p {
	case LeaveMissing:
		return "leave_missing"
	case ForwardFill:
		return "forward_fill"
	case InterpolateLinear:
		return "interpolate_linear"
	case DropIncompleteRows:
		return "drop_incomplete_rows"
	default:
		return fmt.Sprintf("fill_policy(%d)", int(p))
	}
}

// ParseFillPolicy maps a policy name onto its FillPolicy.
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "leave_missing", "none":
		return LeaveMissing, nil
	case "forward_fill", "ffill":
		return ForwardFill, nil
	case "interpolate_linear", "interpolate":
		return InterpolateLinear, nil
	case "drop_incomplete_rows", "drop":
		return DropIncompleteRows, nil
	default:
		return LeaveMissing, fmt.Errorf("unknown fill policy %q", s)
	}
}

// forwardFill fills each missing cell with the nearest earlier valid value.
func forwardFill(col []null.Float) []null.Float {
	out := make([]null.Float, len(col))
	last := null.Float{}
	for i, v := range col {
		if v.Valid {
			last = v
		}
		out[i] = v
		if !v.Valid && last.Valid {
			out[i] = last
		}
	}
	return out
}

// interpolateLinear fills each interior gap linearly in time between the
// surrounding valid values. Time-weighted, so irregular axes interpolate
// correctly.
func interpolateLinear(dates []time.Time, col []null.Float) []null.Float {
	out := make([]null.Float, len(col))
	copy(out, col)

	prev := -1
	for i, v := range col {
		if !v.Valid {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			t0, v0 := dates[prev].Unix(), col[prev].Float64
			t1, v1 := dates[i].Unix(), v.Float64
			for j := prev + 1; j < i; j++ {
				frac := float64(dates[j].Unix()-t0) / float64(t1-t0)
				out[j] = null.FloatFrom(v0 + (v1-v0)*frac)
			}
		}
		prev = i
	}
	return out
}
