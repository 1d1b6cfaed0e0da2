package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/tabio"
)

// errBadForm marks malformed multipart requests and form values.
var errBadForm = errors.New("invalid form")

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

// formOverhead allows for multipart boundaries and text fields on top of
// the file payload.
const formOverhead = 1 << 20

// parseForm bounds the body to what maxFiles files of the configured size
// can take and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	limit := s.cfg.Upload.MaxFileSize*int64(maxFiles) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			return fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, limit)
		}
		return fmt.Errorf("%w: %v", errBadForm, err)
	}
	return nil
}

// fileCount returns how many parts of the named field were uploaded.
func fileCount(r *http.Request, field string) int {
	if r.MultipartForm == nil {
		return 0
	}
	return len(r.MultipartForm.File[field])
}

// readFiles reads every uploaded part of the named field.
func readFiles(r *http.Request, field string) ([]core.UploadedFile, error) {
	if fileCount(r, field) == 0 {
		return nil, core.ErrNoFile
	}
	headers := r.MultipartForm.File[field]
	files := make([]core.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (core.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return core.UploadedFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return core.UploadedFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return core.UploadedFile{Name: fh.Filename, Size: fh.Size, Data: data}, nil
}

// parseOptions reads the pipeline choices shared by every endpoint:
//
//	to       output format (csv, xlsx)
//	ops      cleaning operations in order, repeated or comma-separated
//	columns  output columns in order, repeated or comma-separated; an
//	         empty value selects no columns
//	rows     preview head size
func parseOptions(r *http.Request) (core.Options, error) {
	var opts core.Options

	if to := strings.TrimSpace(r.FormValue("to")); to != "" {
		f, err := tabio.ParseFormat(to)
		if err != nil {
			return opts, err
		}
		opts.Target = f
	}

	ops, err := clean.ParseOperations(listValues(r, "ops"))
	if err != nil {
		return opts, err
	}
	opts.Operations = ops

	if _, ok := r.Form["columns"]; ok {
		opts.Columns = listValues(r, "columns")
		if opts.Columns == nil {
			opts.Columns = []string{}
		}
	}

	if rows := r.FormValue("rows"); rows != "" {
		n, err := strconv.Atoi(rows)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("%w: rows must be a positive integer", errBadForm)
		}
		opts.PreviewRows = n
	}
	return opts, nil
}

// parseChartRequest reads kind, column, x, y and bins.
func parseChartRequest(r *http.Request) (chart.Request, error) {
	kind, err := chart.ParseKind(r.FormValue("kind"))
	if err != nil {
		return chart.Request{}, err
	}
	req := chart.Request{
		Kind:   kind,
		Column: strings.TrimSpace(r.FormValue("column")),
		X:      strings.TrimSpace(r.FormValue("x")),
		Y:      strings.TrimSpace(r.FormValue("y")),
	}
	if bins := r.FormValue("bins"); bins != "" {
		n, err := strconv.Atoi(bins)
		if err != nil || n < 1 {
			return req, fmt.Errorf("%w: bins must be a positive integer", errBadForm)
		}
		if err := chart.CheckBins(n); err != nil {
			return req, err
		}
		req.Bins = n
	}
	return req, nil
}

// listValues returns the named form values. A single value is split on
// commas; repeated values are taken as given so names may contain commas.
func listValues(r *http.Request, key string) []string {
	values := r.Form[key]
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
