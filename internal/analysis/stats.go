package analysis

import (
	"math"
	"sort"

	"econdata/pkg/contracts/domain"

	"github.com/guregu/null/v6"
)

// Stats summarizes the present values of one column, mirroring the usual
// describe() output. Fields that need more data than the column has (for
// example skewness of two points) are missing rather than zero.
type Stats struct {
	Count    int        `json:"count"`
	Mean     null.Float `json:"mean"`
	Median   null.Float `json:"median"`
	StdDev   null.Float `json:"std_dev"`
	Min      null.Float `json:"min"`
	Max      null.Float `json:"max"`
	Skewness null.Float `json:"skewness"`
	Kurtosis null.Float `json:"kurtosis"`
}

// Describe computes descriptive statistics over the present values of col.
// Missing cells are skipped, not treated as zero.
func Describe(col []null.Float) Stats {
	var xs []float64
	for _, v := range col {
		if v.Valid {
			xs = append(xs, v.Float64)
		}
	}
	stats := Stats{Count: len(xs)}
	if len(xs) == 0 {
		return stats
	}

	mean := 0.0
	minV, maxV := xs[0], xs[0]
	for _, x := range xs {
		mean += x
		minV = math.Min(minV, x)
		maxV = math.Max(maxV, x)
	}
	mean /= float64(len(xs))

	stats.Mean = null.FloatFrom(mean)
	stats.Median = null.FloatFrom(median(xs))
	stats.Min = null.FloatFrom(minV)
	stats.Max = null.FloatFrom(maxV)

	n := float64(len(xs))
	var m2, m3, m4 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n

	if len(xs) >= 2 {
		stats.StdDev = null.FloatFrom(math.Sqrt(m2 * n / (n - 1)))
	}
	// Sample-adjusted skewness and excess kurtosis; both need a nonzero
	// spread to be defined.
	if len(xs) >= 3 && m2 > 0 {
		g1 := m3 / math.Pow(m2, 1.5)
		stats.Skewness = null.FloatFrom(math.Sqrt(n*(n-1)) / (n - 2) * g1)
	}
	if len(xs) >= 4 && m2 > 0 {
		g2 := m4/(m2*m2) - 3
		stats.Kurtosis = null.FloatFrom(((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3)))
	}
	return stats
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Matrix is a symmetric correlation matrix over named columns.
type Matrix struct {
	columns []string
	values  [][]null.Float
}

// Columns returns the column names in table order.
func (m *Matrix) Columns() []string {
	cols := make([]string, len(m.columns))
	copy(cols, m.columns)
	return cols
}

// At returns the correlation between columns i and j, missing when the
// pair has fewer than two complete rows or either side has zero variance.
func (m *Matrix) At(i, j int) null.Float {
	return m.values[i][j]
}

// CorrelationMatrix computes pairwise Pearson correlations between the
// table's columns over rows where both columns are present.
func CorrelationMatrix(t *domain.Table) *Matrix {
	names := t.Columns()
	cols := make([][]null.Float, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}

	values := make([][]null.Float, len(names))
	for i := range names {
		values[i] = make([]null.Float, len(names))
		for j := range names {
			if j < i {
				values[i][j] = values[j][i]
				continue
			}
			values[i][j] = pearson(cols[i], cols[j])
		}
	}
	return &Matrix{columns: names, values: values}
}

func pearson(a, b []null.Float) null.Float {
	var xs, ys []float64
	for i := range a {
		if a[i].Valid && b[i].Valid {
			xs = append(xs, a[i].Float64)
			ys = append(ys, b[i].Float64)
		}
	}
	if len(xs) < 2 {
		return null.Float{}
	}

	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return null.Float{}
	}
	return null.FloatFrom(cov / math.Sqrt(varX*varY))
}
