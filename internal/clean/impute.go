package clean

import "github.com/JonMunkholm/tabconv/internal/table"

// FillReport describes the effect of FillMissingNumeric.
type FillReport struct {
	// Filled maps column name to the number of cells replaced.
	Filled map[string]int
	// Skipped lists numeric columns with missing cells but no values,
	// whose mean is undefined.
	Skipped []string
}

// FillMissingNumeric replaces missing cells of numeric columns with the mean
// of the column's non-missing values, computed before any replacement.
// Text and unknown columns are untouched. A numeric column with no values
// keeps its missing cells and is reported in Skipped.
func FillMissingNumeric(t *table.Table) (*table.Table, FillReport) {
	report := FillReport{Filled: make(map[string]int)}
	cols := t.Columns()
	changed := false

	for j, col := range cols {
		if col.Kind != table.KindNumeric {
			continue
		}
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		mean, ok := col.Mean()
		if !ok {
			report.Skipped = append(report.Skipped, col.Name)
			continue
		}
		fill := table.NumberCell(mean)
		for r := range col.Cells {
			if col.Cells[r].Missing {
				col.Cells[r] = fill
			}
		}
		cols[j] = col
		report.Filled[col.Name] = missing
		changed = true
	}

	if !changed {
		return t, report
	}
	result, _ := table.NewWithRows(t.NumRows(), cols...)
	return result, report
}
