package table

import "fmt"

// Project returns a table holding exactly the named columns in the given
// order. Rows are unchanged. Unknown names produce an *UnknownColumnError
// listing all of them; repeated names produce ErrDuplicateColumn. The input
// table is never modified.
func Project(t *Table, names []string) (*Table, error) {
	var unknown []string
	seen := make(map[string]bool, len(names))
	idx := make([]int, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q requested twice", ErrDuplicateColumn, name)
		}
		seen[name] = true

		pos := t.Index(name)
		if pos < 0 {
			unknown = append(unknown, name)
			continue
		}
		idx[i] = pos
	}
	if len(unknown) > 0 {
		return nil, &UnknownColumnError{Names: unknown}
	}

	cols := make([]Column, len(names))
	for i, pos := range idx {
		cols[i] = t.columns[pos].clone()
	}
	return &Table{columns: cols, rows: t.rows}, nil
}
