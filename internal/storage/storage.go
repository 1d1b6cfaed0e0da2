// Package storage delivers converted files to a local directory, an
// in-memory filesystem or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/config"
	"github.com/JonMunkholm/tabconv/internal/tabio"
)

// ErrInvalidName is returned for empty names or names that escape the
// storage root.
var ErrInvalidName = errors.New("invalid file name")

// File describes a stored file.
type File struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
}

// Storage is a flat destination for converted files. Names are slash
// separated and relative to the storage root.
type Storage interface {
	// Write streams r to name, replacing any existing file. size may be
	// -1 when unknown.
	Write(ctx context.Context, name string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context) ([]File, error)
	// Location describes where name ends up, for logs and CLI output.
	Location(name string) string
}

// New creates the storage selected by cfg.Mode.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Mode) {
	case config.StorageLocal, "":
		return NewLocal(cfg.Path), nil
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageS3:
		return NewS3(ctx, S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s (supported: local, memory, s3)", cfg.Mode)
	}
}

// cleanName normalises name to a relative slash path.
func cleanName(name string) (string, error) {
	n := strings.TrimLeft(strings.ReplaceAll(name, "\\", "/"), "/")
	if n == "" {
		return "", ErrInvalidName
	}
	for _, part := range strings.Split(n, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
		}
	}
	return n, nil
}

// mimeTypeOf reports the content type for a stored name.
func mimeTypeOf(name string) string {
	f, err := tabio.DetectFormat(name)
	if err != nil {
		return "application/octet-stream"
	}
	return f.MIMEType()
}
