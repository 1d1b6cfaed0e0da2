package chart

import (
	"encoding/json"
	"testing"

	"github.com/JonMunkholm/tabconv/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *table.Table {
	return table.MustNew(
		table.InferColumn("price", []string{"1", "2", "", "4"}),
		table.InferColumn("qty", []string{"10", "", "30", "40"}),
		table.InferColumn("region", []string{"east", "west", "east", ""}),
	)
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"line", "BAR", " Pie ", "scatter", "histogram"} {
		_, err := ParseKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseKind("radar")
	assert.ErrorIs(t, err, ErrUnknownChartKind)
}

func TestBuild_LineAndBar(t *testing.T) {
	for _, kind := range []Kind{KindLine, KindBar} {
		t.Run(string(kind), func(t *testing.T) {
			spec, err := Build(sample(), Request{Kind: kind})
			require.NoError(t, err)
			assert.Equal(t, kind, spec.Kind)
			assert.Equal(t, "row", spec.XLabel)
			require.Len(t, spec.Series, 2, "text columns are not plotted")

			assert.Equal(t, "price", spec.Series[0].Name)
			assert.Equal(t, []Point{{X: 0, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 4}}, spec.Series[0].Points)
			assert.Equal(t, "qty", spec.Series[1].Name)
			assert.Len(t, spec.Series[1].Points, 3)
		})
	}

	_, err := Build(table.MustNew(table.InferColumn("t", []string{"a"})), Request{Kind: KindLine})
	assert.ErrorIs(t, err, ErrNoNumericColumns)
}

func TestBuild_Pie(t *testing.T) {
	spec, err := Build(sample(), Request{Kind: KindPie, Column: "region"})
	require.NoError(t, err)
	assert.Equal(t, "Pie chart of region", spec.Title)
	require.Len(t, spec.Slices, 2)
	assert.Equal(t, Slice{Label: "east", Count: 2, Percent: 100 * 2.0 / 3.0}, spec.Slices[0])
	assert.Equal(t, "west", spec.Slices[1].Label)

	spec, err = Build(sample(), Request{Kind: KindPie, Column: "price"})
	require.NoError(t, err)
	assert.Len(t, spec.Slices, 3)
}

func TestBuild_Scatter(t *testing.T) {
	spec, err := Build(sample(), Request{Kind: KindScatter, X: "price", Y: "qty"})
	require.NoError(t, err)
	assert.Equal(t, "qty vs price", spec.Title)
	require.Len(t, spec.Series, 1)
	// Rows missing either value are skipped.
	assert.Equal(t, []Point{{X: 1, Y: 10}, {X: 4, Y: 40}}, spec.Series[0].Points)
}

func TestBuild_Histogram(t *testing.T) {
	tbl := table.MustNew(table.InferColumn("v", []string{"0", "1", "2", "3", "4", "10", ""}))

	spec, err := Build(tbl, Request{Kind: KindHistogram, Column: "v", Bins: 5})
	require.NoError(t, err)
	require.Len(t, spec.Bins, 5)
	assert.Equal(t, Bin{Low: 0, High: 2, Count: 2}, spec.Bins[0])
	assert.Equal(t, Bin{Low: 2, High: 4, Count: 2}, spec.Bins[1])
	assert.Equal(t, 1, spec.Bins[2].Count)
	assert.Equal(t, 0, spec.Bins[3].Count)
	assert.Equal(t, Bin{Low: 8, High: 10, Count: 1}, spec.Bins[4], "the maximum falls in the last bin")

	total := 0
	for _, b := range spec.Bins {
		total += b.Count
	}
	assert.Equal(t, 6, total)
}

func TestBuild_HistogramEdgeCases(t *testing.T) {
	single := table.MustNew(table.InferColumn("v", []string{"5", "5"}))
	spec, err := Build(single, Request{Kind: KindHistogram, Column: "v"})
	require.NoError(t, err)
	require.Len(t, spec.Bins, DefaultBins)
	assert.Equal(t, 4.5, spec.Bins[0].Low)
	assert.Equal(t, 5.5, spec.Bins[DefaultBins-1].High)

	empty := table.MustNew(table.Column{Name: "v", Kind: table.KindNumeric, Cells: []table.Cell{table.MissingCell()}})
	spec, err = Build(empty, Request{Kind: KindHistogram, Column: "v"})
	require.NoError(t, err)
	assert.Empty(t, spec.Bins)
}

func TestBuild_ColumnErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		is   error
	}{
		{"pie without column", Request{Kind: KindPie}, ErrColumnRequired},
		{"histogram without column", Request{Kind: KindHistogram, Column: " "}, ErrColumnRequired},
		{"scatter without y", Request{Kind: KindScatter, X: "price"}, ErrColumnRequired},
		{"unknown column", Request{Kind: KindPie, Column: "nope"}, table.ErrUnknownColumn},
		{"histogram of text", Request{Kind: KindHistogram, Column: "region"}, ErrColumnNotNumeric},
		{"scatter of text", Request{Kind: KindScatter, X: "region", Y: "qty"}, ErrColumnNotNumeric},
		{"unknown kind", Request{Kind: "radar"}, ErrUnknownChartKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(sample(), tt.req)
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := Build(sample(), Request{Kind: KindScatter, X: "price"})
	var cre *ColumnRequiredError
	require.ErrorAs(t, err, &cre)
	assert.Equal(t, "y", cre.Role)
	assert.EqualError(t, err, "scatter chart: y column required")
}

func TestSpec_JSON(t *testing.T) {
	spec, err := Build(sample(), Request{Kind: KindPie, Column: "region"})
	require.NoError(t, err)

	b, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"pie"`)
	assert.Contains(t, string(b), `"slices":[`)
	assert.NotContains(t, string(b), `"series"`)
}

func TestBuild_HistogramBinLimit(t *testing.T) {
	tbl := table.MustNew(table.InferColumn("v", []string{"0", "1", "2"}))

	for _, bins := range []int{MaxBins + 1, 1 << 62} {
		_, err := Build(tbl, Request{Kind: KindHistogram, Column: "v", Bins: bins})
		require.ErrorIs(t, err, ErrTooManyBins)
		var be *BinsError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, bins, be.Bins)
	}

	spec, err := Build(tbl, Request{Kind: KindHistogram, Column: "v", Bins: MaxBins})
	require.NoError(t, err)
	assert.Len(t, spec.Bins, MaxBins)

	assert.NoError(t, CheckBins(0))
	assert.NoError(t, CheckBins(MaxBins))
	assert.Error(t, CheckBins(MaxBins+1))
}
