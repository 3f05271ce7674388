package domain

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Table is a time-indexed tabular structure: one shared date axis and one
// named column per contributing series. Cells are invalid where a series has
// no value for that date.
//
// Invariant: the date axis is sorted ascending with no duplicates, and every
// column has exactly one cell per axis entry.
type Table struct {
	dates   []time.Time
	columns []string
	cells   map[string][]null.Float
}

// NewTable creates a table over the given date axis. The axis must be sorted
// ascending with no duplicate dates.
func NewTable(dates []time.Time) (*Table, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("table axis not strictly increasing at index %d (%s then %s)",
				i, dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
	axis := make([]time.Time, len(dates))
	copy(axis, dates)
	return &Table{
		dates: axis,
		cells: make(map[string][]null.Float),
	}, nil
}

// AddColumn appends a named column. The column must have one cell per axis
// entry and the name must be unused.
func (t *Table) AddColumn(name string, values []null.Float) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if _, exists := t.cells[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %q has %d cells, axis has %d rows", name, len(values), len(t.dates))
	}
	col := make([]null.Float, len(values))
	copy(col, values)
	t.columns = append(t.columns, name)
	t.cells[name] = col
	return nil
}

// Dates returns a copy of the date axis.
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, len(t.dates))
	copy(dates, t.dates)
	return dates
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Column returns a copy of the named column's cells in axis order.
func (t *Table) Column(name string) ([]null.Float, bool) {
	col, ok := t.cells[name]
	if !ok {
		return nil, false
	}
	values := make([]null.Float, len(col))
	copy(values, col)
	return values, true
}

// Cell returns the value for (date, column). The second return is false when
// the date is not on the axis or the column does not exist.
func (t *Table) Cell(date time.Time, column string) (null.Float, bool) {
	col, ok := t.cells[column]
	if !ok {
		return null.Float{}, false
	}
	for i, d := range t.dates {
		if d.Equal(date) {
			return col[i], true
		}
	}
	return null.Float{}, false
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []null.Float {
	row := make([]null.Float, len(t.columns))
	for j, name := range t.columns {
		row[j] = t.cells[name][i]
	}
	return row
}

// NumRows returns the length of the date axis.
func (t *Table) NumRows() int { return len(t.dates) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// SetColumn replaces the cells of an existing column. Used by fill policies
// and derived-column helpers; the replacement must match the axis length.
func (t *Table) SetColumn(name string, values []null.Float) error {
	if _, ok := t.cells[name]; !ok {
		return fmt.Errorf("no such column %q", name)
	}
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %q replacement has %d cells, axis has %d rows", name, len(values), len(t.dates))
	}
	col := make([]null.Float, len(values))
	copy(col, values)
	t.cells[name] = col
	return nil
}

// FilterRows returns a new table keeping only rows for which keep returns
// true, preserving axis order and column order.
func (t *Table) FilterRows(keep func(i int) bool) *Table {
	var idx []int
	for i := range t.dates {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := &Table{
		dates: make([]time.Time, len(idx)),
		cells: make(map[string][]null.Float, len(t.columns)),
	}
	for j, i := range idx {
		out.dates[j] = t.dates[i]
	}
	for _, name := range t.columns {
		col := make([]null.Float, len(idx))
		for j, i := range idx {
			col[j] = t.cells[name][i]
		}
		out.columns = append(out.columns, name)
		out.cells[name] = col
	}
	return out
}
