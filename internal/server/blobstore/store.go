// Package blobstore is the byte store holding binary file payloads. Blobs
// are addressed by relative, slash-separated keys such as
// "images/1714557600000-3f9a-cat.png"; the same key is recorded on the file.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/server/config"
)

var (
	// ErrBlobNotFound is returned when no blob is stored under a key.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrInvalidKey is returned for keys that are empty or escape the store root.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is implemented by every byte store backend.
type Store interface {
	// Put writes r under key, replacing any previous blob, and returns
	// the number of bytes stored.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns a reader over the blob. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns the blob size in bytes.
	Stat(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// Rename moves the blob at from to to.
	Rename(ctx context.Context, from, to string) error
	// Copy stores an independent byte copy of from under to.
	Copy(ctx context.Context, from, to string) error
}

// CleanKey normalises key and rejects anything that is not a relative path
// inside the store.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	k := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if k == "." || k == ".." || strings.HasPrefix(k, "/") || strings.HasPrefix(k, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendFS:
		return NewLocalStore(cfg.StorageRoot)
	case config.StorageBackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
