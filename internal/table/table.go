// Package table provides the in-memory data model shared by the loader,
// the cleaning operations and the serializers.
//
// A Table is an ordered list of named, typed columns that all hold the same
// number of cells. Tables are treated as values: every transformation in this
// module returns a new Table and leaves its input untouched.
package table

import (
	"fmt"
	"math"
)

// Kind is the element kind of a column, computed once at load time.
type Kind int

const (
	KindUnknown Kind = iota
	KindNumeric
	KindText
)

// String returns the lowercase name used in API responses.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds render by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*k = KindNumeric
	case "text":
		*k = KindText
	case "unknown", "":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown column kind %q", b)
	}
	return nil
}

// Cell is a single value. Num is only meaningful for non-missing cells of a
// numeric column; Text always carries the textual form of the value.
type Cell struct {
	Text    string
	Num     float64
	Missing bool
}

// MissingCell returns a cell that represents absent data.
func MissingCell() Cell {
	return Cell{Missing: true}
}

// TextCell returns a non-missing text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell returns a non-missing numeric cell whose Text is the canonical
// rendering of v.
func NumberCell(v float64) Cell {
	return Cell{Text: FormatNumber(v), Num: v}
}

// Column is a named sequence of cells of one kind.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	return len(c.Cells)
}

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean of the non-missing values of a numeric
// column. ok is false when the column is not numeric or has no values.
func (c Column) Mean() (mean float64, ok bool) {
	if c.Kind != KindNumeric {
		return 0, false
	}
	var sum float64
	var count int
	for _, cell := range c.Cells {
		if cell.Missing {
			continue
		}
		sum += cell.Num
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// clone returns a deep copy of the column.
func (c Column) clone() Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return Column{Name: c.Name, Kind: c.Kind, Cells: cells}
}

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	columns []Column
	rows    int
}

// New builds a table from columns, checking the table invariants.
// The columns are copied so later changes by the caller do not leak in.
func New(columns ...Column) (*Table, error) {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	return NewWithRows(rows, columns...)
}

// NewWithRows is like New but records an explicit row count, which matters
// for tables that end up with zero columns.
func NewWithRows(rows int, columns ...Column) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	cols := make([]Column, len(columns))
	for i, col := range columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true
		if col.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d cells, want %d", ErrRaggedColumns, col.Name, col.Len(), rows)
		}
		cols[i] = col.clone()
	}
	return &Table{columns: cols, rows: rows}, nil
}

// MustNew is New for tests and literals; it panics on invalid input.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns a deep copy of the columns.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.clone()
	}
	return cols
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.columns[i].clone(), true
}

// ColumnAt returns a copy of the column at position i.
func (t *Table) ColumnAt(i int) Column {
	return t.columns[i].clone()
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, col := range t.columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col).
func (t *Table) Cell(row, col int) Cell {
	return t.columns[col].Cells[row]
}

// Row returns the cells of one row in column order.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Cells[i]
	}
	return row
}

// Head returns a table with at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.rows {
		n = t.rows
	}
	cols := make([]Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, n)
		copy(cells, col.Cells[:n])
		cols[i] = Column{Name: col.Name, Kind: col.Kind, Cells: cells}
	}
	return &Table{columns: cols, rows: n}
}

// Equal reports whether two tables have the same columns, kinds and values.
// Numeric cells compare by value, text cells by text, and missing equals missing.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.rows != other.rows || len(t.columns) != len(other.columns) {
		return false
	}
	for i, col := range t.columns {
		oc := other.columns[i]
		if col.Name != oc.Name || col.Kind != oc.Kind {
			return false
		}
		for r := range col.Cells {
			if !CellsEqual(col.Kind, col.Cells[r], oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}

// CellsEqual compares two cells of a column of the given kind.
func CellsEqual(kind Kind, a, b Cell) bool {
	if a.Missing || b.Missing {
		return a.Missing == b.Missing
	}
	if kind == KindNumeric {
		return a.Num == b.Num || (math.IsNaN(a.Num) && math.IsNaN(b.Num))
	}
	return a.Text == b.Text
}
