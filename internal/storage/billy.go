package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// BillyStorage stores files on a go-billy filesystem. It backs both the
// local and the memory modes.
type BillyStorage struct {
	fs   billy.Filesystem
	root string
}

// NewLocal stores files below dir on disk. The directory is created on
// first write.
func NewLocal(dir string) *BillyStorage {
	return &BillyStorage{fs: osfs.New(dir), root: dir}
}

// NewMemory keeps files in process memory.
func NewMemory() *BillyStorage {
	return &BillyStorage{fs: memfs.New(), root: "memory:"}
}

// Write streams reader into name, creating parent directories.
func (s *BillyStorage) Write(ctx context.Context, name string, reader io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := cleanName(name)
	if err != nil {
		return err
	}

	file, err := s.fs.Create(n)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Open opens name for reading.
func (s *BillyStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(n)
}

// List walks the filesystem and returns every file sorted by name.
func (s *BillyStorage) List(ctx context.Context) ([]File, error) {
	var files []File

	var walk func(string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			p := entry.Name()
			if dir != "." && dir != "" {
				p = path.Join(dir, entry.Name())
			}
			if entry.IsDir() {
				if err := walk(p); err != nil {
					return err
				}
				continue
			}
			files = append(files, File{
				Name:     p,
				Size:     entry.Size(),
				MIMEType: mimeTypeOf(p),
			})
		}
		return nil
	}

	if err := walk("."); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Location joins name onto the storage root.
func (s *BillyStorage) Location(name string) string {
	n, err := cleanName(name)
	if err != nil {
		n = name
	}
	return path.Join(s.root, n)
}
