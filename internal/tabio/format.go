// Package tabio reads uploaded tabular files into tables and writes tables
// back out as CSV or XLSX.
package tabio

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MIME types of the supported output formats.
const (
	MIMETypeCSV  = "text/csv"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatCSV, FormatXLSX}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the content type used when offering a download.
func (f Format) MIMEType() string {
	switch f {
	case FormatXLSX:
		return MIMETypeXLSX
	default:
		return MIMETypeCSV
	}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatXLSX
}

// DetectFormat derives the input format from a file name's extension,
// compared case-insensitively.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", &UnsupportedFormatError{Name: fileName, Ext: ext}
	}
}

// ParseFormat parses a user-chosen target format tag such as "csv",
// "xlsx" or "excel".
func ParseFormat(tag string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", &UnsupportedFormatError{Ext: tag}
	}
}

// ConvertedName returns the suggested download name for a converted file:
// the original name followed by "_converted" and the target extension.
func ConvertedName(originalName string, target Format) string {
	base := filepath.Base(originalName)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "table"
	}
	return base + "_converted" + target.Extension()
}
