package core

import (
	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/tabio"
	"github.com/JonMunkholm/tabconv/internal/table"
)

// UploadedFile is one file handed over by the UI. The format is derived from
// the extension of Name. Data is never modified.
type UploadedFile struct {
	Name string
	Size int64
	Data []byte
}

// NewUploadedFile wraps raw content, taking Size from the data length.
func NewUploadedFile(name string, data []byte) UploadedFile {
	return UploadedFile{Name: name, Size: int64(len(data)), Data: data}
}

// Options are the user's choices for one pipeline run.
type Options struct {
	// Operations are applied in order. Order matters when both are present:
	// deduplicating first makes the fill mean reflect distinct rows only.
	Operations []clean.Operation

	// Columns selects and orders the output columns. Nil keeps all columns.
	Columns []string

	// Target is the output format (default: csv).
	Target tabio.Format

	// PreviewRows is the number of leading rows in a Preview (default from config).
	PreviewRows int
}

// Status classifies a file's outcome within a batch.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is a converted file.
type Result struct {
	ID           string        `json:"id"`
	FileName     string        `json:"fileName"`
	SourceFormat tabio.Format  `json:"sourceFormat"`
	Rows         int           `json:"rows"`
	Columns      []string      `json:"columns"`
	Steps        []clean.Step  `json:"steps,omitempty"`
	Output       *tabio.Output `json:"-"`
}

// FileOutcome is the per-file entry of a batch.
type FileOutcome struct {
	Index    int          `json:"index"`
	FileName string       `json:"fileName"`
	Status   Status       `json:"status"`
	Result   *Result      `json:"result,omitempty"`
	Message  *UserMessage `json:"error,omitempty"`
	Err      error        `json:"-"`
}

// BatchResult collects the outcomes of a batch in upload order.
type BatchResult struct {
	ID        string        `json:"id"`
	Files     []FileOutcome `json:"files"`
	Converted int           `json:"converted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
}

// AllFailed reports whether no file in the batch converted.
func (b *BatchResult) AllFailed() bool {
	return len(b.Files) > 0 && b.Converted == 0
}

// ColumnSummary describes one column of a preview.
type ColumnSummary struct {
	Name    string     `json:"name"`
	Kind    table.Kind `json:"kind"`
	Missing int        `json:"missing"`
	Present int        `json:"present"`
	Mean    *float64   `json:"mean,omitempty"`
}

// Preview is the inspection view of one file after the chosen operations.
type Preview struct {
	FileName   string          `json:"fileName"`
	Size       int64           `json:"size"`
	SizeKiB    float64         `json:"sizeKiB"`
	Format     tabio.Format    `json:"format"`
	Rows       int             `json:"rows"`
	Columns    int             `json:"columns"`
	Duplicates int             `json:"duplicates"`
	Summary    []ColumnSummary `json:"summary"`
	Steps      []clean.Step    `json:"steps,omitempty"`
	Head       *table.Table    `json:"-"`
	HeadRows   [][]any         `json:"head"`
}

// PreviewOutcome is the per-file entry of a multi-file preview.
type PreviewOutcome struct {
	FileName string       `json:"fileName"`
	Status   Status       `json:"status"`
	Preview  *Preview     `json:"preview,omitempty"`
	Message  *UserMessage `json:"error,omitempty"`
	Err      error        `json:"-"`
}

// ChartResult pairs a chart description with the file it came from.
type ChartResult struct {
	FileName string      `json:"fileName"`
	Chart    *chart.Spec `json:"chart"`
}
