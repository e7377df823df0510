// Package table implements the working record set accumulated by the fusion
// pipeline: a fixed set of rows keyed by catalogue id, with columns added or
// replaced as enrichment stages run.
package table

import (
	"fmt"
	"strconv"
)

// Cell is a single nullable table value. Cells keep their serialized form so
// that writing a snapshot that was just read back produces identical bytes.
type Cell struct {
	value string
	valid bool
}

// String creates a text cell.
func String(s string) Cell {
	return Cell{value: s, valid: true}
}

// Float creates a numeric cell.
func Float(f float64) Cell {
	return Cell{value: strconv.FormatFloat(f, 'g', -1, 64), valid: true}
}

// Int creates an integer cell.
func Int(n int64) Cell {
	return Cell{value: strconv.FormatInt(n, 10), valid: true}
}

// Null creates the null sentinel cell.
func Null() Cell {
	return Cell{}
}

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool {
	return !c.valid
}

// Value returns the cell's serialized value, empty when null.
func (c Cell) Value() string {
	return c.value
}

// Float returns the cell parsed as a float. The second return is false for
// null cells and values that do not parse.
func (c Cell) Float() (float64, bool) {
	if !c.valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(c.value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Table is the working record set. The row set is fixed at construction;
// enrichment only adds or replaces columns.
type Table struct {
	ids   []int64
	order []string
	cols  map[string]map[int64]Cell
}

// New creates a table with the given row ids and no columns.
func New(ids []int64) *Table {
	owned := make([]int64, len(ids))
	copy(owned, ids)
	return &Table{
		ids:  owned,
		cols: make(map[string]map[int64]Cell),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns the row ids in table order.
func (t *Table) IDs() []int64 {
	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// SetColumn replaces or inserts a column. An existing column of the same name
// is dropped first, so the new column always lands at the end of the column
// order. Cells for ids outside the row set are ignored; rows without a cell
// read back as null.
func (t *Table) SetColumn(name string, cells map[int64]Cell) {
	if _, ok := t.cols[name]; ok {
		for i, existing := range t.order {
			if existing == name {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	col := make(map[int64]Cell, len(cells))
	for _, id := range t.ids {
		if cell, ok := cells[id]; ok {
			col[id] = cell
		}
	}
	t.cols[name] = col
	t.order = append(t.order, name)
}

// Cell returns the value at (id, column), null when the row has no value or
// the column does not exist.
func (t *Table) Cell(id int64, name string) Cell {
	col, ok := t.cols[name]
	if !ok {
		return Null()
	}
	cell, ok := col[id]
	if !ok {
		return Null()
	}
	return cell
}

// Column returns all non-null cells of the named column keyed by row id.
func (t *Table) Column(name string) (map[int64]Cell, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make(map[int64]Cell, len(col))
	for id, cell := range col {
		out[id] = cell
	}
	return out, nil
}
