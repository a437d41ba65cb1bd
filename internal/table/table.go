// Package table defines the in-memory tabular model that flows between the
// raw source, the dimension/fact builders, and the warehouse loader.
//
// A Table is an ordered list of column names plus an ordered list of rows,
// each row aligned to Columns. A nil cell is the null value. Cells carry one
// of a small set of scalar kinds: string, int64, float64, bool, time.Time.
//
// Every operation returns a new Table and leaves the receiver untouched, so
// builders can be written as pure functions over their inputs.
package table

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingColumn is returned when a projection or join references a column
// the table does not have.
var ErrMissingColumn = errors.New("missing column")

// Table is an ordered, column-aligned in-memory relation.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New builds a table from columns and rows. Rows are used as-is.
func New(columns []string, rows ...[]any) *Table {
	return &Table{Columns: columns, Rows: rows}
}

// Len returns the number of rows; a nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Value returns the cell at row i for column name (nil when absent).
func (t *Table) Value(i int, name string) any {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) || j >= len(t.Rows[i]) {
		return nil
	}
	return t.Rows[i][j]
}

// Column returns a copy of all values of column name.
func (t *Table) Column(name string) ([]any, bool) {
	j := t.Index(name)
	if j < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		if j < len(r) {
			out[i] = r[j]
		}
	}
	return out, true
}

// Clone returns a deep copy of the column list and row slices. Cell values
// are scalars and are shared.
func (t *Table) Clone() *Table {
	cols := append([]string(nil), t.Columns...)
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]any(nil), r...)
	}
	return &Table{Columns: cols, Rows: rows}
}

// Rename returns a table whose columns are renamed through names. Columns
// not present in names keep their name. Row data is shared with the receiver.
func (t *Table) Rename(names map[string]string) *Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if n, ok := names[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	return &Table{Columns: cols, Rows: t.Rows}
}

// Col describes one projected column: the output name and the source
// columns tried in order. When From is empty the output name is also the
// source name.
type Col struct {
	As   string
	From []string
}

// C is shorthand for a projected column that keeps its name.
func C(name string) Col { return Col{As: name} }

// Alias is shorthand for a projected column renamed from one or more
// candidate source names.
func Alias(as string, from ...string) Col { return Col{As: as, From: from} }

func (c Col) sources() []string {
	if len(c.From) == 0 {
		return []string{c.As}
	}
	return c.From
}

// Select projects the listed columns in order, applying renames. It fails
// with ErrMissingColumn when none of a column's sources exist.
func (t *Table) Select(cols ...Col) (*Table, error) {
	idx := make([]int, len(cols))
	names := make([]string, len(cols))
	for k, c := range cols {
		idx[k] = -1
		for _, src := range c.sources() {
			if j := t.Index(src); j >= 0 {
				idx[k] = j
				break
			}
		}
		if idx[k] < 0 {
			return nil, fmt.Errorf("select %q: %w", c.As, ErrMissingColumn)
		}
		names[k] = c.As
	}

	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		out := make([]any, len(cols))
		for k, j := range idx {
			if j < len(r) {
				out[k] = r[j]
			}
		}
		rows[i] = out
	}
	return &Table{Columns: names, Rows: rows}, nil
}

// WithColumn appends a column computed per row by fn, or replaces it when a
// column with that name already exists. fn sees the row before the new value
// is written.
func (t *Table) WithColumn(name string, fn func(row []any) any) *Table {
	out := t.Clone()
	j := out.Index(name)
	if j < 0 {
		out.Columns = append(out.Columns, name)
	}
	for i, r := range out.Rows {
		v := fn(t.Rows[i])
		if j < 0 {
			out.Rows[i] = append(r, v)
		} else {
			out.Rows[i][j] = v
		}
	}
	return out
}

// WithValue appends (or replaces) a column holding the same value in every row.
func (t *Table) WithValue(name string, v any) *Table {
	return t.WithColumn(name, func([]any) any { return v })
}

// FillNull replaces nulls in column name with v. Unknown columns are ignored.
func (t *Table) FillNull(name string, v any) *Table {
	j := t.Index(name)
	if j < 0 {
		return t
	}
	out := t.Clone()
	for _, r := range out.Rows {
		if r[j] == nil {
			r[j] = v
		}
	}
	return out
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(row []any) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]any, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, append([]any(nil), r...))
		}
	}
	return out
}

// NotNull is a Filter predicate builder that drops rows whose column name is
// null. An unknown column drops every row.
func (t *Table) NotNull(name string) func(row []any) bool {
	j := t.Index(name)
	return func(r []any) bool { return j >= 0 && j < len(r) && r[j] != nil }
}

// SortBy returns the rows stably sorted ascending by column name using
// Compare; nulls sort first.
func (t *Table) SortBy(name string) (*Table, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("sort by %q: %w", name, ErrMissingColumn)
	}
	out := t.Clone()
	sort.SliceStable(out.Rows, func(a, b int) bool {
		return Compare(out.Rows[a][j], out.Rows[b][j]) < 0
	})
	return out, nil
}

// LeftJoin joins right onto the receiver on column on, appending the right
// columns listed in take. Every left row is kept; a left row with several
// matches is repeated once per match, and an unmatched row (or one with a
// null key) gets nulls for the taken columns.
func (t *Table) LeftJoin(right *Table, on string, take ...string) (*Table, error) {
	lj := t.Index(on)
	if lj < 0 {
		return nil, fmt.Errorf("left join: left %q: %w", on, ErrMissingColumn)
	}
	rj := right.Index(on)
	if rj < 0 {
		return nil, fmt.Errorf("left join: right %q: %w", on, ErrMissingColumn)
	}
	takeIdx := make([]int, len(take))
	for k, name := range take {
		takeIdx[k] = right.Index(name)
		if takeIdx[k] < 0 {
			return nil, fmt.Errorf("left join: right %q: %w", name, ErrMissingColumn)
		}
	}

	matches := make(map[any][]int, len(right.Rows))
	for i, r := range right.Rows {
		k := r[rj]
		if k == nil {
			continue
		}
		matches[k] = append(matches[k], i)
	}

	out := &Table{
		Columns: append(append([]string(nil), t.Columns...), take...),
		Rows:    make([][]any, 0, len(t.Rows)),
	}
	for _, l := range t.Rows {
		var hits []int
		if k := l[lj]; k != nil {
			hits = matches[k]
		}
		if len(hits) == 0 {
			row := append(append([]any(nil), l...), make([]any, len(take))...)
			out.Rows = append(out.Rows, row)
			continue
		}
		for _, h := range hits {
			row := append([]any(nil), l...)
			for _, ri := range takeIdx {
				row = append(row, right.Rows[h][ri])
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
