package domain

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	_, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 1, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not strictly increasing")

	tbl, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 0, tbl.NumCols())
}

func TestTable_AddColumn(t *testing.T) {
	tbl, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 2, 1)})
	require.NoError(t, err)

	require.NoError(t, tbl.AddColumn("GDP", []null.Float{null.FloatFrom(1), null.Float{}}))

	err = tbl.AddColumn("GDP", []null.Float{null.Float{}, null.Float{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")

	err = tbl.AddColumn("UNRATE", []null.Float{null.FloatFrom(3.5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "axis has 2 rows")

	err = tbl.AddColumn("", nil)
	require.Error(t, err)
}

func TestTable_Accessors(t *testing.T) {
	tbl, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 2, 1), date(2020, 3, 1)})
	require.NoError(t, err)
	require.NoError(t, tbl.AddColumn("GDP", []null.Float{null.FloatFrom(1), null.Float{}, null.FloatFrom(3)}))
	require.NoError(t, tbl.AddColumn("UNRATE", []null.Float{null.FloatFrom(3.5), null.FloatFrom(3.6), null.FloatFrom(4.4)}))

	assert.Equal(t, []string{"GDP", "UNRATE"}, tbl.Columns())

	col, ok := tbl.Column("GDP")
	require.True(t, ok)
	assert.False(t, col[1].Valid)

	_, ok = tbl.Column("CPI")
	assert.False(t, ok)

	cell, ok := tbl.Cell(date(2020, 3, 1), "UNRATE")
	require.True(t, ok)
	assert.Equal(t, 4.4, cell.Float64)

	_, ok = tbl.Cell(date(2021, 1, 1), "UNRATE")
	assert.False(t, ok)

	row := tbl.Row(0)
	require.Len(t, row, 2)
	assert.Equal(t, 1.0, row[0].Float64)
	assert.Equal(t, 3.5, row[1].Float64)
}

func TestTable_CopiesAreIndependent(t *testing.T) {
	tbl, err := NewTable([]time.Time{date(2020, 1, 1)})
	require.NoError(t, err)
	src := []null.Float{null.FloatFrom(1)}
	require.NoError(t, tbl.AddColumn("GDP", src))

	// Mutating caller-owned slices must not leak into the table.
	src[0] = null.FloatFrom(99)
	col, _ := tbl.Column("GDP")
	assert.Equal(t, 1.0, col[0].Float64)

	col[0] = null.FloatFrom(42)
	again, _ := tbl.Column("GDP")
	assert.Equal(t, 1.0, again[0].Float64)
}

func TestTable_FilterRows(t *testing.T) {
	tbl, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 2, 1), date(2020, 3, 1)})
	require.NoError(t, err)
	require.NoError(t, tbl.AddColumn("GDP", []null.Float{null.FloatFrom(1), null.Float{}, null.FloatFrom(3)}))

	out := tbl.FilterRows(func(i int) bool { return i != 1 })
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []time.Time{date(2020, 1, 1), date(2020, 3, 1)}, out.Dates())
	col, _ := out.Column("GDP")
	assert.Equal(t, 3.0, col[1].Float64)

	// Original untouched.
	assert.Equal(t, 3, tbl.NumRows())
}

func TestTable_SetColumn(t *testing.T) {
	tbl, err := NewTable([]time.Time{date(2020, 1, 1), date(2020, 2, 1)})
	require.NoError(t, err)
	require.NoError(t, tbl.AddColumn("GDP", []null.Float{null.Float{}, null.Float{}}))

	require.NoError(t, tbl.SetColumn("GDP", []null.Float{null.FloatFrom(1), null.FloatFrom(2)}))
	col, _ := tbl.Column("GDP")
	assert.Equal(t, 2.0, col[1].Float64)

	assert.Error(t, tbl.SetColumn("CPI", []null.Float{null.Float{}, null.Float{}}))
	assert.Error(t, tbl.SetColumn("GDP", []null.Float{null.Float{}}))
}
