package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/config"
	"github.com/JonMunkholm/tabconv/internal/logging"
	"github.com/JonMunkholm/tabconv/internal/tabio"
	"github.com/JonMunkholm/tabconv/internal/table"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrFileTooLarge is returned for files above UploadConfig.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrTooManyFiles is returned for batches above UploadConfig.MaxFiles.
	ErrTooManyFiles = errors.New("too many files in batch")
)

// Service runs the tabular pipeline for uploaded files.
type Service struct {
	cfg     config.UploadConfig
	limiter *UploadLimiter
}

// NewService creates a new Service instance from the upload settings.
func NewService(cfg config.UploadConfig) *Service {
	return &Service{
		cfg:     cfg,
		limiter: NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
	}
}

// Limiter returns the limiter guarding whole requests. The HTTP layer
// acquires it per request and drains it on shutdown.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Config returns the upload settings the service was built with.
func (s *Service) Config() config.UploadConfig {
	return s.cfg
}

// Load validates an uploaded file and parses it into a table.
func (s *Service) Load(ctx context.Context, f UploadedFile) (*table.Table, tabio.Format, error) {
	if strings.TrimSpace(f.Name) == "" && len(f.Data) == 0 {
		return nil, "", ErrNoFile
	}
	if s.cfg.MaxFileSize > 0 && f.Size > s.cfg.MaxFileSize {
		return nil, "", fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, f.Name, f.Size, s.cfg.MaxFileSize)
	}

	format, err := tabio.DetectFormat(f.Name)
	if err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, format, err
	}

	start := time.Now()
	t, err := tabio.Load(f.Data, format)
	if err != nil {
		return nil, format, fmt.Errorf("load %s: %w", f.Name, err)
	}

	logging.FromContext(ctx).Debug("file loaded",
		"file", f.Name,
		"format", format,
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return t, format, nil
}

// Transform applies the cleaning operations in order and then the column
// selection. On error the input table is left as it was.
func (s *Service) Transform(ctx context.Context, t *table.Table, opts Options) (*table.Table, []clean.Step, error) {
	working, steps, err := clean.Apply(t, opts.Operations)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if opts.Columns != nil {
		working, err = table.Project(working, opts.Columns)
		if err != nil {
			return nil, nil, err
		}
	}
	return working, steps, nil
}

// Process runs the whole pipeline for one file.
func (s *Service) Process(ctx context.Context, f UploadedFile, opts Options) (*Result, error) {
	resultID := uuid.New().String()
	logger := logging.WithFields(ctx, "result_id", resultID, "file", f.Name)

	t, format, err := s.Load(ctx, f)
	if err != nil {
		return nil, err
	}

	working, steps, err := s.Transform(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := opts.Target
	if target == "" {
		target = tabio.FormatCSV
	}
	out, err := tabio.Serialize(working, target, f.Name)
	if err != nil {
		return nil, err
	}

	logger.Info("file converted",
		"from", format,
		"to", target,
		"rows", working.NumRows(),
		"columns", working.NumColumns(),
		"bytes", len(out.Data),
	)

	return &Result{
		ID:           resultID,
		FileName:     f.Name,
		SourceFormat: format,
		Rows:         working.NumRows(),
		Columns:      working.Names(),
		Steps:        steps,
		Output:       out,
	}, nil
}

// ProcessBatch converts every file independently and in parallel. Per-file
// errors are recorded in the outcome; the returned error is non-nil only
// when the batch itself is rejected.
func (s *Service) ProcessBatch(ctx context.Context, files []UploadedFile, opts Options) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), s.cfg.MaxFiles)
	}

	batch := &BatchResult{
		ID:    uuid.New().String(),
		Files: make([]FileOutcome, len(files)),
	}
	logger := logging.WithFields(ctx, "batch_id", batch.ID)
	logger.Info("batch started", "files", len(files))

	// Each goroutine writes only its own slot and always returns nil so
	// one file's failure never cancels the others.
	var g errgroup.Group
	g.SetLimit(s.workers())
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			out := FileOutcome{Index: i, FileName: f.Name}
			if err := ctx.Err(); err != nil {
				out.fail(err)
				batch.Files[i] = out
				return nil
			}
			res, err := s.Process(ctx, f, opts)
			if err != nil {
				out.fail(err)
			} else {
				out.Status = StatusOK
				out.Result = res
			}
			batch.Files[i] = out
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range batch.Files {
		switch out.Status {
		case StatusOK:
			batch.Converted++
		case StatusSkipped:
			batch.Skipped++
			logger.Warn("file skipped", "file", out.FileName, "error", out.Err)
		default:
			batch.Failed++
			logger.Warn("file failed", "file", out.FileName, "error", out.Err)
		}
	}

	logger.Info("batch completed",
		"converted", batch.Converted,
		"skipped", batch.Skipped,
		"failed", batch.Failed,
	)
	return batch, nil
}

func (s *Service) workers() int {
	if s.cfg.MaxConcurrent > 0 {
		return s.cfg.MaxConcurrent
	}
	return DefaultMaxConcurrentUploads
}

// Chart loads and transforms a file, then builds the requested chart over
// the resulting table.
func (s *Service) Chart(ctx context.Context, f UploadedFile, opts Options, req chart.Request) (*ChartResult, error) {
	t, _, err := s.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	working, _, err := s.Transform(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	spec, err := chart.Build(working, req)
	if err != nil {
		return nil, err
	}
	return &ChartResult{FileName: f.Name, Chart: spec}, nil
}

// StatusOf classifies a per-file error: unsupported formats are skipped,
// everything else failed.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, tabio.ErrUnsupportedFormat):
		return StatusSkipped
	default:
		return StatusFailed
	}
}

func (o *FileOutcome) fail(err error) {
	msg := MapError(err)
	o.Status = StatusOf(err)
	o.Err = err
	o.Message = &msg
}
