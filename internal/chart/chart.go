// Package chart turns a table and a chart choice into a renderable chart
// description. Drawing is left to the caller; a Spec is plain data that
// encodes to JSON.
package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/table"
)

var (
	// ErrColumnRequired is the sentinel wrapped by ColumnRequiredError.
	ErrColumnRequired = errors.New("column required")
	// ErrUnknownChartKind is returned for chart kinds other than the five supported.
	ErrUnknownChartKind = errors.New("unknown chart kind")
	// ErrColumnNotNumeric is returned when a chart needs numbers from a text column.
	ErrColumnNotNumeric = errors.New("column is not numeric")
	// ErrNoNumericColumns is returned by line and bar charts over tables without numbers.
	ErrNoNumericColumns = errors.New("table has no numeric columns")
	// ErrTooManyBins is the sentinel wrapped by BinsError.
	ErrTooManyBins = errors.New("too many histogram bins")
)

const (
	// DefaultBins is the histogram bin count used when none is requested.
	DefaultBins = 10
	// MaxBins bounds the histogram bin count.
	MaxBins = 1000
)

// BinsError reports a histogram bin count above MaxBins.
type BinsError struct {
	Bins int
}

func (e *BinsError) Error() string {
	return fmt.Sprintf("%d histogram bins requested, at most %d allowed", e.Bins, MaxBins)
}

func (e *BinsError) Unwrap() error {
	return ErrTooManyBins
}

// CheckBins validates a requested bin count. Zero or less selects
// DefaultBins and is accepted.
func CheckBins(n int) error {
	if n > MaxBins {
		return &BinsError{Bins: n}
	}
	return nil
}

// Kind is a chart type.
type Kind string

const (
	KindLine      Kind = "line"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
)

// Kinds lists the supported chart kinds in display order.
var Kinds = []Kind{KindLine, KindBar, KindPie, KindScatter, KindHistogram}

// ParseKind parses a chart kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
}

// ColumnRequiredError reports a chart that needs a column selection the
// user has not made yet.
type ColumnRequiredError struct {
	Kind Kind
	Role string // "column", "x" or "y"
}

func (e *ColumnRequiredError) Error() string {
	return fmt.Sprintf("%s chart: %s column required", e.Kind, e.Role)
}

func (e *ColumnRequiredError) Unwrap() error {
	return ErrColumnRequired
}

// Request selects a chart kind and, where needed, its columns.
type Request struct {
	Kind   Kind   `json:"kind"`
	Column string `json:"column,omitempty"` // pie, histogram
	X      string `json:"x,omitempty"`      // scatter
	Y      string `json:"y,omitempty"`      // scatter
	Bins   int    `json:"bins,omitempty"`   // histogram
}

// Point is one plotted value. Label is set for categorical points.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// Series is a named sequence of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Slice is one pie wedge.
type Slice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Bin is one histogram bucket covering [Low, High); the last bin is closed.
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Spec is a renderable chart description.
type Spec struct {
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XLabel string   `json:"xLabel,omitempty"`
	YLabel string   `json:"yLabel,omitempty"`
	Series []Series `json:"series,omitempty"`
	Slices []Slice  `json:"slices,omitempty"`
	Bins   []Bin    `json:"bins,omitempty"`
}

// Build produces the chart description for req over t.
func Build(t *table.Table, req Request) (*Spec, error) {
	switch req.Kind {
	case KindLine, KindBar:
		return buildSeries(t, req.Kind)
	case KindPie:
		return buildPie(t, req.Column)
	case KindScatter:
		return buildScatter(t, req.X, req.Y)
	case KindHistogram:
		return buildHistogram(t, req.Column, req.Bins)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChartKind, req.Kind)
	}
}

// lookup returns the named column, or the error to report for it.
func lookup(t *table.Table, kind Kind, role, name string) (table.Column, error) {
	if strings.TrimSpace(name) == "" {
		return table.Column{}, &ColumnRequiredError{Kind: kind, Role: role}
	}
	col, ok := t.Column(name)
	if !ok {
		return table.Column{}, &table.UnknownColumnError{Names: []string{name}}
	}
	return col, nil
}

func lookupNumeric(t *table.Table, kind Kind, role, name string) (table.Column, error) {
	col, err := lookup(t, kind, role, name)
	if err != nil {
		return col, err
	}
	if col.Kind != table.KindNumeric {
		return col, fmt.Errorf("%w: %q", ErrColumnNotNumeric, name)
	}
	return col, nil
}

// buildSeries plots every numeric column against the row index.
func buildSeries(t *table.Table, kind Kind) (*Spec, error) {
	spec := &Spec{Kind: kind, Title: titleFor(kind, ""), XLabel: "row"}
	for _, col := range t.Columns() {
		if col.Kind != table.KindNumeric {
			continue
		}
		s := Series{Name: col.Name, Points: make([]Point, 0, col.Len())}
		for i, c := range col.Cells {
			if c.Missing {
				continue
			}
			s.Points = append(s.Points, Point{X: float64(i), Y: c.Num})
		}
		spec.Series = append(spec.Series, s)
	}
	if len(spec.Series) == 0 {
		return nil, ErrNoNumericColumns
	}
	return spec, nil
}

// buildPie counts occurrences of each value, most frequent first.
func buildPie(t *table.Table, name string) (*Spec, error) {
	col, err := lookup(t, KindPie, "column", name)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	total := 0
	for _, c := range col.Cells {
		if c.Missing {
			continue
		}
		label := c.Text
		if col.Kind == table.KindNumeric {
			label = table.FormatNumber(c.Num)
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
		total++
	}

	slices := make([]Slice, len(order))
	for i, label := range order {
		slices[i] = Slice{
			Label:   label,
			Count:   counts[label],
			Percent: 100 * float64(counts[label]) / float64(total),
		}
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Count > slices[j].Count
	})

	return &Spec{Kind: KindPie, Title: titleFor(KindPie, col.Name), Slices: slices}, nil
}

// buildScatter pairs two numeric columns, skipping rows missing either value.
func buildScatter(t *table.Table, xName, yName string) (*Spec, error) {
	x, err := lookupNumeric(t, KindScatter, "x", xName)
	if err != nil {
		return nil, err
	}
	y, err := lookupNumeric(t, KindScatter, "y", yName)
	if err != nil {
		return nil, err
	}

	s := Series{Name: y.Name, Points: make([]Point, 0, x.Len())}
	for i := range x.Cells {
		if x.Cells[i].Missing || y.Cells[i].Missing {
			continue
		}
		s.Points = append(s.Points, Point{X: x.Cells[i].Num, Y: y.Cells[i].Num})
	}

	return &Spec{
		Kind:   KindScatter,
		Title:  fmt.Sprintf("%s vs %s", y.Name, x.Name),
		XLabel: x.Name,
		YLabel: y.Name,
		Series: []Series{s},
	}, nil
}

// buildHistogram buckets a numeric column into equal-width bins over its
// range. A column with a single distinct value gets the range widened by
// 0.5 on each side.
func buildHistogram(t *table.Table, name string, bins int) (*Spec, error) {
	col, err := lookupNumeric(t, KindHistogram, "column", name)
	if err != nil {
		return nil, err
	}
	if err := CheckBins(bins); err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	spec := &Spec{Kind: KindHistogram, Title: titleFor(KindHistogram, col.Name), XLabel: col.Name, YLabel: "count"}

	lo, hi := math.Inf(1), math.Inf(-1)
	var values []float64
	for _, c := range col.Cells {
		if c.Missing {
			continue
		}
		values = append(values, c.Num)
		lo = math.Min(lo, c.Num)
		hi = math.Max(hi, c.Num)
	}
	if len(values) == 0 {
		return spec, nil
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	spec.Bins = make([]Bin, bins)
	for i := range spec.Bins {
		spec.Bins[i] = Bin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	spec.Bins[bins-1].High = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		spec.Bins[i].Count++
	}
	return spec, nil
}

func titleFor(kind Kind, column string) string {
	name := strings.ToUpper(string(kind[:1])) + string(kind[1:])
	if column == "" {
		return name + " chart"
	}
	return name + " chart of " + column
}
