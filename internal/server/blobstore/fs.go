package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/spf13/afero"

	"github.com/dmitrijs2005/gophdrive/internal/filex"
)

// FSStore keeps blobs as files under the root of an afero filesystem.
type FSStore struct {
	fs afero.Fs
}

// NewFSStore wraps fs. Keys are resolved relative to its root.
func NewFSStore(fs afero.Fs) *FSStore {
	return &FSStore{fs: fs}
}

// NewLocalStore roots a store at dir on the host filesystem, creating it if needed.
func NewLocalStore(dir string) (*FSStore, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

func notFound(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", key, ErrBlobNotFound)
	}
	return err
}

func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	k, err := CleanKey(key)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(k), 0o755); err != nil {
		return 0, err
	}

	f, err := s.fs.Create(k)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(k)
		return 0, err
	}
	return n, nil
}

func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(k)
	if err != nil {
		return nil, notFound(key, err)
	}
	return f, nil
}

func (s *FSStore) Stat(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	k, err := CleanKey(key)
	if err != nil {
		return 0, err
	}
	fi, err := s.fs.Stat(k)
	if err != nil {
		return 0, notFound(key, err)
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%s: %w", key, ErrBlobNotFound)
	}
	return fi.Size(), nil
}

func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(k); err != nil {
		return notFound(key, err)
	}
	return nil
}

func (s *FSStore) Rename(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := CleanKey(from)
	if err != nil {
		return err
	}
	dst, err := CleanKey(to)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	if _, err := s.fs.Stat(src); err != nil {
		return notFound(from, err)
	}
	if err := s.fs.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return err
	}
	return s.fs.Rename(src, dst)
}

func (s *FSStore) Copy(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := CleanKey(from)
	if err != nil {
		return err
	}
	dst, err := CleanKey(to)
	if err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("%w: copy onto itself", ErrInvalidKey)
	}
	in, err := s.fs.Open(src)
	if err != nil {
		return notFound(from, err)
	}
	defer in.Close()

	_, err = s.Put(ctx, dst, in)
	return err
}
