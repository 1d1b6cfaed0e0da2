package core

import (
	"context"
	"math"

	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/table"
)

// DefaultPreviewRows is the head size used when neither the options nor the
// config name one.
const DefaultPreviewRows = 5

// Preview loads a file, applies the chosen operations and column selection,
// and describes the result: file metadata, shape, duplicate rows still
// present, a per-column summary, and the first rows.
func (s *Service) Preview(ctx context.Context, f UploadedFile, opts Options) (*Preview, error) {
	t, format, err := s.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	working, steps, err := s.Transform(ctx, t, opts)
	if err != nil {
		return nil, err
	}

	n := opts.PreviewRows
	if n <= 0 {
		n = s.cfg.PreviewRows
	}
	if n <= 0 {
		n = DefaultPreviewRows
	}

	head := working.Head(n)
	p := &Preview{
		FileName:   f.Name,
		Size:       f.Size,
		SizeKiB:    math.Round(float64(f.Size)/1024*100) / 100,
		Format:     format,
		Rows:       working.NumRows(),
		Columns:    working.NumColumns(),
		Duplicates: working.NumRows() - clean.RemoveDuplicates(working).NumRows(),
		Summary:    Summarize(working),
		Steps:      steps,
		Head:       head,
		HeadRows:   rowValues(head),
	}
	return p, nil
}

// PreviewBatch previews every file, recording unsupported files as skipped
// and other errors as failed.
func (s *Service) PreviewBatch(ctx context.Context, files []UploadedFile, opts Options) ([]PreviewOutcome, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	outcomes := make([]PreviewOutcome, len(files))
	for i, f := range files {
		out := PreviewOutcome{FileName: f.Name}
		p, err := s.Preview(ctx, f, opts)
		if err != nil {
			msg := MapError(err)
			out.Status = StatusOf(err)
			out.Message = &msg
			out.Err = err
		} else {
			out.Status = StatusOK
			out.Preview = p
		}
		outcomes[i] = out
	}
	return outcomes, nil
}

// Summarize reports kind, missing count and mean for each column.
func Summarize(t *table.Table) []ColumnSummary {
	cols := t.Columns()
	out := make([]ColumnSummary, len(cols))
	for i, col := range cols {
		missing := col.MissingCount()
		sum := ColumnSummary{
			Name:    col.Name,
			Kind:    col.Kind,
			Missing: missing,
			Present: col.Len() - missing,
		}
		if col.Kind == table.KindNumeric {
			if mean, ok := col.Mean(); ok {
				sum.Mean = &mean
			}
		}
		out[i] = sum
	}
	return out
}

// rowValues renders rows for JSON: numbers as numbers, text as strings and
// missing cells as null.
func rowValues(t *table.Table) [][]any {
	numeric := make([]bool, t.NumColumns())
	for c := range numeric {
		numeric[c] = t.ColumnAt(c).Kind == table.KindNumeric
	}

	rows := make([][]any, t.NumRows())
	for r := range rows {
		cells := t.Row(r)
		values := make([]any, len(cells))
		for c, cell := range cells {
			switch {
			case cell.Missing:
				values[c] = nil
			case numeric[c]:
				values[c] = cell.Num
			default:
				values[c] = cell.Text
			}
		}
		rows[r] = values
	}
	return rows
}
