package tabio

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is the sentinel wrapped by UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrEmptyFile indicates an input with no header row at all.
var ErrEmptyFile = errors.New("empty file")

// ErrNoColumns indicates a table with zero columns was given to Serialize.
var ErrNoColumns = errors.New("table has no columns")

// ErrNoSheets indicates a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// UnsupportedFormatError reports a file or format tag that is not CSV or XLSX.
type UnsupportedFormatError struct {
	Name string // file name, empty for bare format tags
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	if e.Name == "" {
		return fmt.Sprintf("unsupported format %q: use csv or xlsx", ext)
	}
	return fmt.Sprintf("unsupported format: %s has extension %s, expected .csv or .xlsx", e.Name, ext)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// ParseError reports input that could not be read as the given format.
type ParseError struct {
	Format Format
	Line   int // 1-based record line, 0 when not applicable
	Err    error
}

func (e *ParseError) Error() string {
	label := "invalid csv"
	if e.Format == FormatXLSX {
		label = "invalid xlsx"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", label, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", label, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SerializationError reports a table that cannot be written in a format.
type SerializationError struct {
	Format Format
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
