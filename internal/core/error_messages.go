// Package core sequences the tabular pipeline for uploaded files.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Action: Split the file into smaller files
//	          Errors: ErrFileTooLarge
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure file is comma-separated with no row longer than the header
//	          Errors: tabio.ParseError (csv)
//
//	FILE003 - Invalid spreadsheet: File is not a readable XLSX workbook
//	          Action: Re-save the workbook as .xlsx
//	          Errors: tabio.ParseError (xlsx)
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or XLSX file
//	          Errors: ErrNoFile
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Upload a file with a header row
//	          Errors: tabio.ErrEmptyFile
//
//	FILE006 - Too many files: Batch exceeds the file count limit
//	          Action: Upload fewer files at once
//	          Errors: ErrTooManyFiles
//
// # Format Errors (FMT001)
//
//	FMT001 - Unsupported format: Only .csv and .xlsx files are supported
//	         Action: The file was skipped; convert it to CSV or XLSX first
//	         Errors: tabio.ErrUnsupportedFormat
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Unknown column: A selected column is not in the table
//	COL002 - Duplicate column: A column was selected more than once
//	COL003 - Column required: The chart needs a column selection
//	COL004 - Column not numeric: The chart needs a numeric column
//	COL005 - No numeric columns: The table has nothing to plot
//
// # Processing Errors
//
//	SER001 - Nothing to serialize: No columns are selected
//	OPS001 - Unknown operation: Cleaning operation is not recognised
//	CHT001 - Unknown chart kind: Chart type is not supported
//	CHT002 - Too many bins: Histogram bin count is above chart.MaxBins
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many conversions in progress
//	UPL004 - Request cancelled: Request was cancelled
//	UPL005 - Request timeout: Request timed out
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Errors are first matched with errors.Is/errors.As against the sentinel and
// typed errors of the pipeline packages, in order. Errors that carry no known
// sentinel (for example ones crossing a process boundary as text) fall back to
// case-insensitive substring patterns. The first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/tabio"
	"github.com/JonMunkholm/tabconv/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure file is comma-separated with no row longer than the header",
		Code:    "FILE002",
	}
	msgInvalidXLSX = UserMessage{
		Message: "File is not a readable spreadsheet",
		Action:  "Re-save the workbook as .xlsx and upload it again",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or XLSX file",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE005",
	}
	msgTooManyFiles = UserMessage{
		Message: "Too many files in one upload",
		Action:  "Upload fewer files at once",
		Code:    "FILE006",
	}
	msgUnsupportedFormat = UserMessage{
		Message: "Only .csv and .xlsx files are supported",
		Action:  "The file was skipped. Convert it to CSV or XLSX first",
		Code:    "FMT001",
	}
	msgUnknownColumn = UserMessage{
		Message: "A selected column is not in the table",
		Action:  "Choose columns from the preview",
		Code:    "COL001",
	}
	msgDuplicateColumn = UserMessage{
		Message: "A column was selected more than once",
		Action:  "Select each column only once",
		Code:    "COL002",
	}
	msgColumnRequired = UserMessage{
		Message: "This chart needs a column selection",
		Action:  "Pick the column to plot",
		Code:    "COL003",
	}
	msgColumnNotNumeric = UserMessage{
		Message: "This chart needs a numeric column",
		Action:  "Pick a column that contains only numbers",
		Code:    "COL004",
	}
	msgNoNumericColumns = UserMessage{
		Message: "The table has no numeric columns to plot",
		Action:  "Choose a pie chart or include numeric columns",
		Code:    "COL005",
	}
	msgNothingToSerialize = UserMessage{
		Message: "No columns are selected for export",
		Action:  "Select at least one column",
		Code:    "SER001",
	}
	msgUnknownOperation = UserMessage{
		Message: "Unknown cleaning operation",
		Action:  "Use dedupe or fill-mean",
		Code:    "OPS001",
	}
	msgUnknownChartKind = UserMessage{
		Message: "Unknown chart type",
		Action:  "Use line, bar, pie, scatter or histogram",
		Code:    "CHT001",
	}
	msgTooManyBins = UserMessage{
		Message: "Too many histogram bins requested",
		Action:  "Use at most 1000 bins",
		Code:    "CHT002",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// ErrRateLimited is returned by the HTTP layer when a client exceeds its
// request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// sentinelMessages maps pipeline sentinels to user messages. Order matters
// where errors wrap more than one sentinel.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrNoFile, msgNoFile},
	{ErrTooManyFiles, msgTooManyFiles},
	{tabio.ErrEmptyFile, msgEmptyFile},
	{tabio.ErrUnsupportedFormat, msgUnsupportedFormat},
	{tabio.ErrNoColumns, msgNothingToSerialize},
	{table.ErrUnknownColumn, msgUnknownColumn},
	{table.ErrDuplicateColumn, msgDuplicateColumn},
	{chart.ErrColumnRequired, msgColumnRequired},
	{chart.ErrColumnNotNumeric, msgColumnNotNumeric},
	{chart.ErrNoNumericColumns, msgNoNumericColumns},
	{chart.ErrUnknownChartKind, msgUnknownChartKind},
	{chart.ErrTooManyBins, msgTooManyBins},
	{clean.ErrUnknownOperation, msgUnknownOperation},
	{ErrTooManyUploads, msgBusy},
	{ErrRateLimited, msgRateLimited},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are the text fallback, matched case-insensitively with
// strings.Contains. More specific patterns come first.
var errorPatterns = []errorPattern{
	{"file too large", msgFileTooLarge},
	{"invalid csv", msgInvalidCSV},
	{"invalid xlsx", msgInvalidXLSX},
	{"no file provided", msgNoFile},
	{"too many files", msgTooManyFiles},
	{"empty file", msgEmptyFile},
	{"unsupported format", msgUnsupportedFormat},
	{"unknown column", msgUnknownColumn},
	{"duplicate column", msgDuplicateColumn},
	{"column required", msgColumnRequired},
	{"not numeric", msgColumnNotNumeric},
	{"no numeric columns", msgNoNumericColumns},
	{"has no columns", msgNothingToSerialize},
	{"unknown cleaning operation", msgUnknownOperation},
	{"unknown chart kind", msgUnknownChartKind},
	{"histogram bins", msgTooManyBins},
	{"too many concurrent uploads", msgBusy},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Parse errors are classified by format, then known sentinels are matched
// with errors.Is, then the text patterns. If nothing matches, a generic
// fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := tabio.DetectFormat("data.json")
//	msg := MapError(err)
//	// msg.Code == "FMT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pe *tabio.ParseError
	if errors.As(err, &pe) {
		if pe.Format == tabio.FormatXLSX {
			return msgInvalidXLSX
		}
		return msgInvalidCSV
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The uploaded file is empty (Code: FILE005). Upload a file with a header row"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error maps to a specific message rather
// than the generic ERR000 fallback. Use this to decide whether the raw error
// text is safe to show.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
