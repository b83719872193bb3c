package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
)

// FileStore keeps blobs as files under dataDir/.cliweb/blobs.
type FileStore struct {
	root string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	root := filepath.Join(dataDir, ".cliweb", "blobs")
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errs.InternalErrorf("failed to create blob directory: %v", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errs.ValidationErrorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

// Put writes to a temporary file first so readers never see partial content.
func (s *FileStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, key+".*.tmp")
	if err != nil {
		return errs.InternalErrorf("failed to create blob: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errs.InternalErrorf("failed to write blob: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.InternalErrorf("failed to write blob: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.InternalErrorf("failed to store blob: %v", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.NotFoundErrorf("blob not found: %s", key)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to open blob: %v", err)
	}
	return f, nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.InternalErrorf("failed to delete blob: %v", err)
	}
	return nil
}

var _ interfaces.BlobStore = (*FileStore)(nil)
