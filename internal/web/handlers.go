package web

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/tabio"
)

// FormatsResponse lists what the API accepts.
type FormatsResponse struct {
	InputFormats  []tabio.Format    `json:"inputFormats"`
	OutputFormats []tabio.Format    `json:"outputFormats"`
	Operations    []clean.Operation `json:"operations"`
	ChartKinds    []chart.Kind      `json:"chartKinds"`
	MaxFileSize   int64             `json:"maxFileSize"`
	MaxFiles      int               `json:"maxFiles"`
}

// ConvertedFile is a converted output inlined in a batch response. Data is
// base64 encoded in JSON.
type ConvertedFile struct {
	FileName string `json:"fileName"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// BatchFile is one file of a batch response.
type BatchFile struct {
	core.FileOutcome
	Output *ConvertedFile `json:"output,omitempty"`
}

// BatchResponse is the JSON body of POST /api/batch.
type BatchResponse struct {
	ID        string      `json:"id"`
	Files     []BatchFile `json:"files"`
	Converted int         `json:"converted"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"conversions": s.service.Limiter().Status(),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, FormatsResponse{
		InputFormats:  tabio.Formats,
		OutputFormats: tabio.Formats,
		Operations:    clean.Operations,
		ChartKinds:    chart.Kinds,
		MaxFileSize:   s.cfg.Upload.MaxFileSize,
		MaxFiles:      s.cfg.Upload.MaxFiles,
	})
}

// handlePreview describes each uploaded file after the chosen operations.
// Unsupported files are reported as skipped without failing the request.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readUpload(w, r, "files", s.cfg.Upload.MaxFiles)
	if !ok {
		return
	}

	var outcomes []core.PreviewOutcome
	err := s.process(r, "files", func(ctx context.Context, files []core.UploadedFile) error {
		var err error
		outcomes, err = s.service.PreviewBatch(ctx, files, opts)
		return err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"files": outcomes})
}

// handleConvert converts a single file and returns the bytes as a download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readUpload(w, r, "file", 1)
	if !ok {
		return
	}
	if fileCount(r, "file") != 1 {
		respondError(w, r, fmt.Errorf("%w: convert takes exactly one file, use /api/batch", errBadForm), http.StatusBadRequest)
		return
	}

	var res *core.Result
	err := s.process(r, "file", func(ctx context.Context, files []core.UploadedFile) error {
		var err error
		res, err = s.service.Process(ctx, files[0], opts)
		return err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	out := res.Output
	w.Header().Set("Content-Type", out.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Result-Id", res.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// handleBatch converts every uploaded file and returns all outputs inline.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readUpload(w, r, "files", s.cfg.Upload.MaxFiles)
	if !ok {
		return
	}

	var batch *core.BatchResult
	err := s.process(r, "files", func(ctx context.Context, files []core.UploadedFile) error {
		var err error
		batch, err = s.service.ProcessBatch(ctx, files, opts)
		return err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := BatchResponse{
		ID:        batch.ID,
		Files:     make([]BatchFile, len(batch.Files)),
		Converted: batch.Converted,
		Skipped:   batch.Skipped,
		Failed:    batch.Failed,
	}
	for i, out := range batch.Files {
		bf := BatchFile{FileOutcome: out}
		if out.Result != nil && out.Result.Output != nil {
			o := out.Result.Output
			bf.Output = &ConvertedFile{FileName: o.FileName, MIMEType: o.MIMEType, Data: o.Data}
		}
		resp.Files[i] = bf
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleChart builds a chart description for one file.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.readUpload(w, r, "file", 1)
	if !ok {
		return
	}
	if fileCount(r, "file") != 1 {
		respondError(w, r, fmt.Errorf("%w: chart takes exactly one file", errBadForm), http.StatusBadRequest)
		return
	}
	req, err := parseChartRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	var res *core.ChartResult
	err = s.process(r, "file", func(ctx context.Context, files []core.UploadedFile) error {
		var err error
		res, err = s.service.Chart(ctx, files[0], opts, req)
		return err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// readUpload parses the form and the pipeline options, writing the error
// response itself when something is wrong. File parts stay in the
// multipart form (spilled to disk past multipartMemory) until process
// reads them.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string, maxFiles int) (core.Options, bool) {
	if err := s.parseForm(w, r, maxFiles); err != nil {
		respondError(w, r, err, statusFor(err))
		return core.Options{}, false
	}
	if fileCount(r, field) == 0 {
		respondError(w, r, core.ErrNoFile, statusFor(core.ErrNoFile))
		return core.Options{}, false
	}
	opts, err := parseOptions(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return core.Options{}, false
	}
	return opts, true
}

// process takes a conversion slot, then reads the field's files into
// memory and runs fn over them. Only requests holding a slot keep file
// contents in memory.
func (s *Server) process(r *http.Request, field string, fn func(context.Context, []core.UploadedFile) error) error {
	return s.run(r.Context(), func(ctx context.Context) error {
		files, err := readFiles(r, field)
		if err != nil {
			return err
		}
		return fn(ctx, files)
	})
}

// run holds a conversion slot and applies the processing timeout.
func (s *Server) run(ctx context.Context, fn func(context.Context) error) error {
	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}
	return s.service.Limiter().Do(ctx, fn)
}
