package analysis

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"
)

// GrowthRate computes the period-over-period fractional change
// (v[t]/v[t-periods]) - 1. The first periods cells are missing by
// construction, as is any cell whose current or base value is missing or
// whose base value is zero. periods must be positive.
func GrowthRate(col []null.Float, periods int) ([]null.Float, error) {
	if periods <= 0 {
		return nil, fmt.Errorf("growth rate periods must be positive, got %d", periods)
	}
	out := make([]null.Float, len(col))
	for t := periods; t < len(col); t++ {
		cur, base := col[t], col[t-periods]
		if !cur.Valid || !base.Valid || base.Float64 == 0 {
			continue
		}
		out[t] = null.FloatFrom(cur.Float64/base.Float64 - 1)
	}
	return out, nil
}

// MovingAverage computes the trailing mean over window cells. The first
// window-1 cells are missing by construction; a window containing any
// missing value yields a missing cell.
func MovingAverage(col []null.Float, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, fmt.Errorf("moving average window must be positive, got %d", window)
	}
	out := make([]null.Float, len(col))
	for t := window - 1; t < len(col); t++ {
		sum := 0.0
		complete := true
		for i := t - window + 1; i <= t; i++ {
			if !col[i].Valid {
				complete = false
				break
			}
			sum += col[i].Float64
		}
		if complete {
			out[t] = null.FloatFrom(sum / float64(window))
		}
	}
	return out, nil
}

// LogReturns computes ln(v[t]/v[t-1]). The first cell is missing by
// construction; cells with a missing or non-positive input propagate
// missing.
func LogReturns(col []null.Float) []null.Float {
	out := make([]null.Float, len(col))
	for t := 1; t < len(col); t++ {
		cur, prev := col[t], col[t-1]
		if !cur.Valid || !prev.Valid || cur.Float64 <= 0 || prev.Float64 <= 0 {
			continue
		}
		out[t] = null.FloatFrom(math.Log(cur.Float64 / prev.Float64))
	}
	return out
}
