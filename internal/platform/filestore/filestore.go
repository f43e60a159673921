// Package filestore implements store.BlobStore on a local directory.
//
// Every blob is a single file named by its key directly under the root
// directory. Keys are validated before any path is built, so no key can
// address a file outside the root. Writes go to a temporary file that is
// renamed into place once fully written and synced.
package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/store"
	"github.com/zeebo/blake3"
)

// ErrInvalidKey is returned for keys not produced by domain.NewStorageKey.
var ErrInvalidKey = errors.New("invalid blob key")

const (
	dirPerm  fs.FileMode = 0o750
	filePerm fs.FileMode = 0o640
)

// Store is a directory-rooted BlobStore.
type Store struct {
	root   string
	logger *slog.Logger
}

var _ store.BlobStore = (*Store)(nil)

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore: root directory must not be empty")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: resolving root %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:   root,
		logger: logger.With(slog.String("component", "filestore")),
	}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(key string) (string, error) {
	if !domain.ValidStorageKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key), nil
}

// Put implements store.BlobStore.Put. It refuses to overwrite an existing
// key with store.ErrDuplicate.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (store.BlobInfo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	finalPath, err := s.path(key)
	if err != nil {
		return store.BlobInfo{}, err
	}

	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return store.BlobInfo{}, fmt.Errorf("creating upload directory: %w", err)
	}
	if _, err := os.Lstat(finalPath); err == nil {
		return store.BlobInfo{}, fmt.Errorf("%w: blob %s", store.ErrDuplicate, key)
	}

	tmpFile, err := os.CreateTemp(s.root, ".upload-*.tmp")
	if err != nil {
		return store.BlobInfo{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn("failed to remove temp file",
					slog.String("path", tmpPath),
					slog.String("error", err.Error()))
			}
		}
	}()

	hasher := blake3.New()
	size, err := io.Copy(io.MultiWriter(tmpFile, hasher), &contextReader{ctx: ctx, r: r})
	if err != nil {
		return store.BlobInfo{}, fmt.Errorf("writing blob %s: %w", key, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return store.BlobInfo{}, fmt.Errorf("syncing blob %s: %w", key, err)
	}
	if err := tmpFile.Chmod(filePerm); err != nil {
		return store.BlobInfo{}, fmt.Errorf("setting blob permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return store.BlobInfo{}, fmt.Errorf("closing blob %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return store.BlobInfo{}, fmt.Errorf("renaming blob %s: %w", key, err)
	}
	success = true

	info := store.BlobInfo{
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}
	log.Debug("blob stored",
		slog.String("key", key),
		slog.Int64("size_bytes", info.Size))
	return info, nil
}

// Open implements store.BlobStore.Open.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("opening blob %s: %w", key, err)
	}
	return f, nil
}

// Delete implements store.BlobStore.Delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrBlobNotFound, key)
		}
		return fmt.Errorf("removing blob %s: %w", key, err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("blob deleted", slog.String("key", key))
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
