package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileStore keeps document bytes under a single root. Paths handed in and
// out are relative to that root and cannot escape it.
type FileStore struct {
	fs afero.Fs
}

func NewFileStore(fs afero.Fs) *FileStore {
	return &FileStore{fs: fs}
}

// NewDiskFileStore roots a store at dir on the local disk, creating it if
// needed.
func NewDiskFileStore(dir string) (*FileStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return NewFileStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Save writes r under a fresh name derived from filename and returns the
// stored relative path. At most limit bytes are accepted when limit > 0.
func (s *FileStore) Save(filename string, r io.Reader, limit int64) (string, error) {
	name := uuid.NewString() + "-" + sanitizeName(filename)

	f, err := s.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && limit > 0 && n > limit {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return "", err
	}
	return name, nil
}

// Open returns the stored file at p.
func (s *FileStore) Open(p string) (afero.File, os.FileInfo, error) {
	clean := cleanPath(p)
	if clean == "" {
		return nil, nil, ErrFileNotFound
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, ErrFileNotFound
	}
	return f, info, nil
}

func (s *FileStore) Remove(p string) error {
	clean := cleanPath(p)
	if clean == "" {
		return nil
	}
	err := s.fs.Remove(clean)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cleanPath(p string) string {
	clean := path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimPrefix(clean, "/")
}

func sanitizeName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." || base == "/" {
		return "file"
	}
	return base
}
