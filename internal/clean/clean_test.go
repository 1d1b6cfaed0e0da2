package clean

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/JonMunkholm/tabconv/internal/table"
)

// num builds a numeric column; nil entries are missing.
func num(name string, values ...any) table.Column {
	cells := make([]table.Cell, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			cells[i] = table.MissingCell()
		case int:
			cells[i] = table.NumberCell(float64(x))
		case float64:
			cells[i] = table.NumberCell(x)
		}
	}
	return table.Column{Name: name, Kind: table.KindNumeric, Cells: cells}
}

// text builds a text column; "" entries are missing.
func text(name string, values ...string) table.Column {
	cells := make([]table.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = table.MissingCell()
		} else {
			cells[i] = table.TextCell(v)
		}
	}
	return table.Column{Name: name, Kind: table.KindText, Cells: cells}
}

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		input *table.Table
		want  *table.Table
	}{
		{
			name:  "keeps first occurrence in order",
			input: table.MustNew(num("a", 1, 2, 1, 3, 2), text("b", "x", "y", "x", "z", "y")),
			want:  table.MustNew(num("a", 1, 2, 3), text("b", "x", "y", "z")),
		},
		{
			name:  "missing equals missing",
			input: table.MustNew(num("a", nil, nil, 1), text("b", "", "", "")),
			want:  table.MustNew(num("a", nil, 1), text("b", "", "")),
		},
		{
			name:  "rows differing in one column are kept",
			input: table.MustNew(num("a", 1, 1), text("b", "x", "X")),
			want:  table.MustNew(num("a", 1, 1), text("b", "x", "X")),
		},
		{
			name:  "numbers compare by value",
			input: table.MustNew(table.Column{Name: "a", Kind: table.KindNumeric, Cells: []table.Cell{{Text: "1.0", Num: 1}, {Text: "1", Num: 1}}}),
			want:  table.MustNew(num("a", 1)),
		},
		{
			name:  "cell boundaries are unambiguous",
			input: table.MustNew(text("a", "ab", "a"), text("b", "c", "bc")),
			want:  table.MustNew(text("a", "ab", "a"), text("b", "c", "bc")),
		},
		{
			name:  "empty table",
			input: table.MustNew(num("a")),
			want:  table.MustNew(num("a")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveDuplicates(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("RemoveDuplicates() rows = %d, want %d", got.NumRows(), tt.want.NumRows())
			}
		})
	}
}

func TestRemoveDuplicates_Idempotent(t *testing.T) {
	in := table.MustNew(num("a", 1, 1, 2, nil, nil), text("b", "x", "x", "y", "", ""))
	once := RemoveDuplicates(in)
	twice := RemoveDuplicates(once)
	if !once.Equal(twice) {
		t.Error("RemoveDuplicates is not idempotent")
	}
	if in.NumRows() != 5 {
		t.Error("RemoveDuplicates modified its input")
	}
}

func TestFillMissingNumeric(t *testing.T) {
	in := table.MustNew(
		num("a", 1, nil, 3),
		num("b", nil, nil, nil),
		text("c", "x", "", "z"),
		num("d", 4, 5, 6),
	)

	got, report := FillMissingNumeric(in)

	want := table.MustNew(
		num("a", 1, 2, 3),
		num("b", nil, nil, nil),
		text("c", "x", "", "z"),
		num("d", 4, 5, 6),
	)
	if !got.Equal(want) {
		t.Errorf("FillMissingNumeric() did not produce the expected table")
	}
	if !reflect.DeepEqual(report.Filled, map[string]int{"a": 1}) {
		t.Errorf("Filled = %v, want map[a:1]", report.Filled)
	}
	if !reflect.DeepEqual(report.Skipped, []string{"b"}) {
		t.Errorf("Skipped = %v, want [b]", report.Skipped)
	}
	if in.ColumnAt(0).MissingCount() != 1 {
		t.Error("FillMissingNumeric modified its input")
	}
}

func TestFillMissingNumeric_PreservesMean(t *testing.T) {
	in := table.MustNew(num("a", 1.5, nil, 2, nil, 7.25))
	before, _ := in.ColumnAt(0).Mean()

	got, _ := FillMissingNumeric(in)
	col := got.ColumnAt(0)
	after, ok := col.Mean()
	if !ok || math.Abs(after-before) > 1e-12 {
		t.Errorf("mean after fill = %v, want %v", after, before)
	}
	if col.MissingCount() != 0 {
		t.Errorf("missing after fill = %d, want 0", col.MissingCount())
	}

	again, report := FillMissingNumeric(got)
	if !again.Equal(got) || len(report.Filled) != 0 {
		t.Error("second fill changed the table")
	}
}

func TestApply_OrderMatters(t *testing.T) {
	in := table.MustNew(num("k", 1, 1, 2), num("v", 1, 1, nil))

	dedupeFirst, steps, err := Apply(in, []Operation{OpRemoveDuplicates, OpFillMissingMean})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := table.MustNew(num("k", 1, 2), num("v", 1, 1)); !dedupeFirst.Equal(want) {
		t.Error("dedupe then fill: unexpected table")
	}
	if len(steps) != 2 || steps[0].RowsBefore != 3 || steps[0].RowsAfter != 2 {
		t.Errorf("steps = %+v", steps)
	}
	if steps[1].Filled["v"] != 1 {
		t.Errorf("fill step = %+v", steps[1])
	}

	in = table.MustNew(num("k", 1, 1, 2, 3), num("v", 1, 1, 4, nil))
	a, _, _ := Apply(in, []Operation{OpRemoveDuplicates, OpFillMissingMean})
	b, _, _ := Apply(in, []Operation{OpFillMissingMean, OpRemoveDuplicates})
	// Distinct rows give mean(1, 4) = 2.5; all rows give mean(1, 1, 4) = 2.
	if got := a.Cell(2, 1).Num; got != 2.5 {
		t.Errorf("dedupe then fill = %v, want 2.5", got)
	}
	if got := b.Cell(2, 1).Num; got != 2 {
		t.Errorf("fill then dedupe = %v, want 2", got)
	}
}

func TestApply_NoOperations(t *testing.T) {
	in := table.MustNew(num("a", 1, 1))
	got, steps, err := Apply(in, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !got.Equal(in) || len(steps) != 0 {
		t.Error("Apply with no operations changed the table")
	}
}

func TestApply_UnknownOperation(t *testing.T) {
	_, _, err := Apply(table.MustNew(num("a", 1)), []Operation{"shuffle"})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("err = %v, want ErrUnknownOperation", err)
	}
}

func TestParseOperations(t *testing.T) {
	tests := []struct {
		in      []string
		want    []Operation
		wantErr bool
	}{
		{[]string{"dedupe", "fill-mean"}, []Operation{OpRemoveDuplicates, OpFillMissingMean}, false},
		{[]string{"FILLNA", " drop-duplicates "}, []Operation{OpFillMissingMean, OpRemoveDuplicates}, false},
		{[]string{"", "dedupe", " "}, []Operation{OpRemoveDuplicates}, false},
		{nil, nil, false},
		{[]string{"dedupe", "sort"}, nil, true},
	}
	for _, tt := range tests {
		got, err := ParseOperations(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOperations(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownOperation) {
				t.Errorf("ParseOperations(%q) err = %v, want ErrUnknownOperation", tt.in, err)
			}
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseOperations(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
