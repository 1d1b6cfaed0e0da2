package tabio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/table"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Load parses raw file content in the given format into a table.
// The first row is the header. Column kinds are inferred from the data.
func Load(data []byte, f Format) (*table.Table, error) {
	switch f {
	case FormatCSV:
		return loadCSV(data)
	case FormatXLSX:
		return loadXLSX(data)
	default:
		return nil, &UnsupportedFormatError{Ext: string(f)}
	}
}

// LoadFile detects the format from fileName and loads data.
func LoadFile(fileName string, data []byte) (*table.Table, Format, error) {
	f, err := DetectFormat(fileName)
	if err != nil {
		return nil, "", err
	}
	t, err := Load(data, f)
	if err != nil {
		return nil, f, err
	}
	return t, f, nil
}

// newCSVReader decodes the input before splitting it: byte order marks are
// stripped, UTF-16 input with a BOM is transcoded, and invalid UTF-8 bytes
// are replaced with U+FFFD.
func newCSVReader(data []byte) *csv.Reader {
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

func loadCSV(data []byte) (*table.Table, error) {
	r := newCSVReader(data)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	names := table.UniqueNames(header)
	raw := make([][]string, len(names))

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		if len(record) > len(names) {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{
				Format: FormatCSV,
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, got %d", len(names), len(record)),
			}
		}
		for j := range names {
			if j < len(record) {
				raw[j] = append(raw[j], record[j])
			} else {
				raw[j] = append(raw[j], "")
			}
		}
	}

	return buildTable(names, raw, nil)
}

func csvParseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Format: FormatCSV, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Format: FormatCSV, Err: err}
}

func loadXLSX(data []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: FormatXLSX, Err: ErrNoSheets}
	}
	sheet := sheets[0]

	rawRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	shownRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	if len(rawRows) == 0 {
		return nil, ErrEmptyFile
	}

	// Cells right of the last header cell become "Unnamed: <i>" columns.
	header := rawRows[0]
	dataRows := rawRows[1:]
	width := len(header)
	for _, row := range dataRows {
		width = max(width, len(row))
	}
	header = append(header[:len(header):len(header)], make([]string, width-len(header))...)
	names := table.UniqueNames(header)
	raw := make([][]string, len(names))
	numeric := make([][]bool, len(names))
	dates := newDateStyles(f)

	for i, row := range dataRows {
		rowNum := i + 2 // header is row 1
		for j := range names {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			isNumber := false
			if strings.TrimSpace(value) != "" {
				cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
				if err != nil {
					return nil, &ParseError{Format: FormatXLSX, Line: rowNum, Err: err}
				}
				isNumber = numericOrigin(f, sheet, cell, value, dates)
				if !isNumber {
					value = shownValue(shownRows, rowNum-1, j, value)
				}
			}
			raw[j] = append(raw[j], value)
			numeric[j] = append(numeric[j], isNumber)
		}
	}

	return buildTable(names, raw, numeric)
}

// numericOrigin reports whether a spreadsheet cell stores a plain number.
// Strings, booleans, errors, formula strings and date-formatted numbers are
// not numbers for kind inference.
func numericOrigin(f *excelize.File, sheet, cell, raw string, dates *dateStyles) bool {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return false
	}
	if _, ok := table.ParseNumber(raw); !ok {
		return false
	}
	return !dates.isDate(sheet, cell)
}

// shownValue returns the formatted value of a cell, falling back to raw.
func shownValue(rows [][]string, r, c int, raw string) string {
	if r < len(rows) && c < len(rows[r]) && rows[r][c] != "" {
		return rows[r][c]
	}
	return raw
}

func buildTable(names []string, raw [][]string, numeric [][]bool) (*table.Table, error) {
	rows := 0
	if len(raw) > 0 {
		rows = len(raw[0])
	}
	cols := make([]table.Column, len(names))
	for j, name := range names {
		values := raw[j]
		if values == nil {
			values = []string{}
		}
		if numeric == nil {
			cols[j] = table.InferColumn(name, values)
		} else {
			cols[j] = table.InferColumnWithOrigin(name, values, numeric[j])
		}
	}
	return table.NewWithRows(rows, cols...)
}
