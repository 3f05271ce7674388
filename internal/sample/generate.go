package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/guregu/null/v6"

	"econdata/pkg/contracts/domain"
)

// Column names produced by Generate, in table order.
const (
	ColGDP          = "gdp_billions"
	ColUnemployment = "unemployment_rate"
	ColInflation    = "inflation_rate"
	ColInterestRate = "interest_rate"
	ColConfidence   = "consumer_confidence"
)

// Generate builds n months of synthetic indicators starting at the month
// of start, one observation per month end. The same seed always produces
// the same table.
//
// GDP follows a geometric random walk with small positive drift,
// unemployment is a damped random walk clipped to [2, 15], inflation is
// noise around 2, the interest rate is noise around 2 floored at zero,
// and consumer confidence mean-reverts around 100.
func Generate(n int, start time.Time, seed int64) (*domain.Table, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}

	rng := rand.New(rand.NewSource(seed))

	dates := make([]time.Time, n)
	for i := range dates {
		// Last day of the i-th month from start.
		dates[i] = time.Date(start.Year(), start.Month()+time.Month(i)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}

	gdp := make([]null.Float, n)
	unemployment := make([]null.Float, n)
	inflation := make([]null.Float, n)
	interest := make([]null.Float, n)
	confidence := make([]null.Float, n)

	gdpGrowth := 0.0
	unemploymentWalk := 0.0
	confidenceLevel := 100.0
	for i := 0; i < n; i++ {
		gdpGrowth += 0.02 + 0.01*rng.NormFloat64()
		gdp[i] = null.FloatFrom(20000 * math.Exp(gdpGrowth))

		unemploymentWalk += 0.5 * rng.NormFloat64()
		unemployment[i] = null.FloatFrom(clip(5+0.1*unemploymentWalk, 2, 15))

		inflation[i] = null.FloatFrom(2 + 0.3*rng.NormFloat64())

		interest[i] = null.FloatFrom(math.Max(0, 2+0.5*rng.NormFloat64()))

		confidenceLevel += 0.1*(100-confidenceLevel) + 2*rng.NormFloat64()
		confidence[i] = null.FloatFrom(confidenceLevel)
	}

	table, err := domain.NewTable(dates)
	if err != nil {
		return nil, fmt.Errorf("failed to build date axis: %w", err)
	}
	for _, col := range []struct {
		name   string
		values []null.Float
	}{
		{ColGDP, gdp},
		{ColUnemployment, unemployment},
		{ColInflation, inflation},
		{ColInterestRate, interest},
		{ColConfidence, confidence},
	} {
		if err := table.AddColumn(col.name, col.values); err != nil {
			return nil, fmt.Errorf("failed to add column %q: %w", col.name, err)
		}
	}
	return table, nil
}

func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
