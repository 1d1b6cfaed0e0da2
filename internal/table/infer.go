package table

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex accepts plain decimal numbers: integers, decimals and
// scientific notation. Grouping separators and currency symbols are rejected
// so such columns stay text.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// nullMarkers are the textual values read as missing data.
var nullMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNullMarker reports whether s denotes a missing value. Markers match
// exactly; surrounding spaces make a value text.
func IsNullMarker(s string) bool {
	return nullMarkers[s]
}

// ParseNumber parses s as a plain decimal number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	// Values beyond float64 range fail here and keep their column text.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v in its canonical form: shortest round-tripping
// decimal, no exponent, no grouping. Negative zero renders as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// InferColumn builds a column from raw textual values. Null markers become
// missing cells. The column is numeric when every remaining value parses as a
// number, unknown when nothing remains, and text otherwise.
func InferColumn(name string, raw []string) Column {
	numeric := make([]bool, len(raw))
	for i, s := range raw {
		if IsNullMarker(s) {
			continue
		}
		_, numeric[i] = ParseNumber(s)
	}
	return InferColumnWithOrigin(name, raw, numeric)
}

// InferColumnWithOrigin builds a column from raw values where the caller
// already knows which values originate from numeric cells, as is the case
// for spreadsheets. A value that is not numeric-origin makes the column text.
func InferColumnWithOrigin(name string, raw []string, numeric []bool) Column {
	cells := make([]Cell, len(raw))
	kind := KindUnknown
	for i, s := range raw {
		if IsNullMarker(s) {
			cells[i] = MissingCell()
			continue
		}
		cells[i] = Cell{Text: s}
		switch {
		case !numeric[i]:
			kind = KindText
		case kind == KindUnknown:
			kind = KindNumeric
		}
	}

	if kind == KindNumeric {
		for i := range cells {
			if cells[i].Missing {
				continue
			}
			v, _ := ParseNumber(cells[i].Text)
			cells[i] = Cell{Text: cells[i].Text, Num: v}
		}
	}

	return Column{Name: name, Kind: kind, Cells: cells}
}

// UniqueNames normalises header names so every column name is unique and
// non-empty. Empty names become "Unnamed: <i>"; repeated names get ".1",
// ".2", ... suffixes in order of appearance. Other names are kept as
// written, spaces included.
func UniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
