package clean

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/table"
)

// RemoveDuplicates drops every row equal in all columns to an earlier row.
// Missing equals missing and numbers compare by value. The first occurrence
// is kept and the remaining rows keep their relative order.
func RemoveDuplicates(t *table.Table) *table.Table {
	cols := t.Columns()
	seen := make(map[string]bool, t.NumRows())
	keep := make([]int, 0, t.NumRows())

	var key strings.Builder
	for r := 0; r < t.NumRows(); r++ {
		key.Reset()
		for _, col := range cols {
			writeCellKey(&key, col.Kind, col.Cells[r])
		}
		k := key.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, r)
	}

	if len(keep) == t.NumRows() {
		return t
	}

	out := make([]table.Column, len(cols))
	for j, col := range cols {
		cells := make([]table.Cell, len(keep))
		for i, r := range keep {
			cells[i] = col.Cells[r]
		}
		out[j] = table.Column{Name: col.Name, Kind: col.Kind, Cells: cells}
	}
	// Columns come from a valid table, so the invariants still hold.
	result, _ := table.NewWithRows(len(keep), out...)
	return result
}

// writeCellKey appends a self-delimiting encoding of a cell: a tag byte,
// the value length, and the value.
func writeCellKey(b *strings.Builder, kind table.Kind, c table.Cell) {
	if c.Missing {
		b.WriteByte('m')
		return
	}
	v := c.Text
	if kind == table.KindNumeric {
		v = table.FormatNumber(c.Num)
	}
	b.WriteByte('v')
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}
