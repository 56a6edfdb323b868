package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/filex"
)

const tmpDirName = ".tmp"

// FSStore stores each blob as a regular file named after its key.
type FSStore struct {
	root     string
	tmp      string
	fileMode os.FileMode
	dirMode  os.FileMode
}

type FSOption func(*FSStore)

// WithFileMode sets the permission bits of stored blobs. Default 0640.
func WithFileMode(mode os.FileMode) FSOption {
	return func(s *FSStore) { s.fileMode = mode }
}

// WithDirMode sets the permission bits of created directories. Default 0750.
func WithDirMode(mode os.FileMode) FSOption {
	return func(s *FSStore) { s.dirMode = mode }
}

// NewFSStore prepares root and its staging directory.
func NewFSStore(root string, opts ...FSOption) (*FSStore, error) {
	s := &FSStore{fileMode: 0o640, dirMode: 0o750}
	for _, opt := range opts {
		opt(s)
	}

	abs, err := filex.EnsureDir(root, s.dirMode)
	if err != nil {
		return nil, fmt.Errorf("blob root: %w", err)
	}
	tmp, err := filex.EnsureDir(filepath.Join(abs, tmpDirName), s.dirMode)
	if err != nil {
		return nil, fmt.Errorf("blob staging dir: %w", err)
	}

	s.root = abs
	s.tmp = tmp
	return s, nil
}

// Root returns the absolute directory blobs are stored in.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) Write(ctx context.Context, key string, r io.Reader, limit int64) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(s.tmp, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("blob %q: create temp: %w", key, err)
	}
	tmpName := f.Name()
	closed := false
	defer func() {
		if !closed {
			_ = f.Close()
		}
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	n, err := copyLimited(ctx, f, r, limit)
	if err != nil {
		return 0, fmt.Errorf("blob %q: %w", key, err)
	}

	if err := f.Chmod(s.fileMode); err != nil {
		return 0, fmt.Errorf("blob %q: chmod: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("blob %q: sync: %w", key, err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("blob %q: close: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("blob %q: %w", key, err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return 0, fmt.Errorf("blob %q: commit: %w", key, err)
	}
	return n, nil
}

func (s *FSStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, nil
	}

	fi, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blob %q: stat: %w", key, err)
	}
	return fi.Mode().IsRegular(), nil
}

func (s *FSStore) Open(_ context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("blob %q: %w", key, common.ErrorNotFound)
	}

	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blob %q: %w", key, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("blob %q: open: %w", key, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("blob %q: stat: %w", key, err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("blob %q: %w", key, common.ErrorNotFound)
	}

	return &Object{ReadCloser: f, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, key)
}
