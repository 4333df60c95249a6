// Package table holds aggregated analysis results: a column-major table of
// float64 cells that tolerates ragged column sets across rows, plus a
// crash-safe on-disk cache container and CSV export.
package table

import (
	"fmt"
	"math"
)

// Cell is one named value of a row.
type Cell struct {
	Col string
	Val float64
}

// Table is an immutable column-major table. Rows that never carried a given
// column hold NaN there.
type Table struct {
	cols []string
	data map[string][]float64
	rows int
}

// NumRows reports the number of rows.
func (t *Table) NumRows() int { return t.rows }

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Column returns a copy of the named column, or false if the table does not
// carry it.
func (t *Table) Column(name string) ([]float64, bool) {
	src, ok := t.data[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out, true
}

// WithColumnOrder returns a view of t with its columns arranged in the given
// order. order must be a permutation of t's column set.
func (t *Table) WithColumnOrder(order []string) (*Table, error) {
	if len(order) != len(t.cols) {
		return nil, fmt.Errorf("table: reorder with %d columns, have %d", len(order), len(t.cols))
	}
	data := make(map[string][]float64, len(order))
	for _, col := range order {
		src, ok := t.data[col]
		if !ok {
			return nil, fmt.Errorf("table: reorder names unknown column %q", col)
		}
		data[col] = src
	}
	cols := make([]string, len(order))
	copy(cols, order)
	return &Table{cols: cols, data: data, rows: t.rows}, nil
}

// Builder accumulates rows whose column sets may differ. Columns appear in
// first-seen order; cells a row does not carry are filled with NaN.
type Builder struct {
	cols []string
	data map[string][]float64
	rows int
}

func NewBuilder() *Builder {
	return &Builder{data: make(map[string][]float64)}
}

// Append adds one row. A column named twice in the same row keeps the later
// value.
func (b *Builder) Append(row []Cell) {
	for _, c := range row {
		if _, ok := b.data[c.Col]; ok {
			continue
		}
		b.cols = append(b.cols, c.Col)
		back := make([]float64, b.rows, b.rows+1)
		for i := range back {
			back[i] = math.NaN()
		}
		b.data[c.Col] = back
	}
	for _, col := range b.cols {
		b.data[col] = append(b.data[col], math.NaN())
	}
	for _, c := range row {
		b.data[c.Col][b.rows] = c.Val
	}
	b.rows++
}

// Table hands over the accumulated rows. The Builder must not be used after
// Table returns.
func (b *Builder) Table() *Table {
	t := &Table{cols: b.cols, data: b.data, rows: b.rows}
	b.cols, b.data, b.rows = nil, nil, 0
	return t
}

// Merge concatenates tables in order into one table over the union of their
// columns. Cells absent from a source table are NaN. Merging the partial
// tables of an ordered partition reproduces the row order of the unsplit
// input.
func Merge(parts []*Table) *Table {
	merged := &Table{data: make(map[string][]float64)}
	for _, p := range parts {
		if p == nil {
			continue
		}
		for _, col := range p.cols {
			if _, ok := merged.data[col]; ok {
				continue
			}
			merged.cols = append(merged.cols, col)
			back := make([]float64, merged.rows)
			for i := range back {
				back[i] = math.NaN()
			}
			merged.data[col] = back
		}
		for _, col := range merged.cols {
			if src, ok := p.data[col]; ok {
				merged.data[col] = append(merged.data[col], src...)
				continue
			}
			dst := merged.data[col]
			for i := 0; i < p.rows; i++ {
				dst = append(dst, math.NaN())
			}
			merged.data[col] = dst
		}
		merged.rows += p.rows
	}
	return merged
}
