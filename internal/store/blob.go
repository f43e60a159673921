package store

import (
	"context"
	"io"
)

// BlobInfo describes bytes written by BlobStore.Put.
type BlobInfo struct {
	Size int64
	// Checksum is the lower-case hex BLAKE3 digest of the stored bytes.
	Checksum string
}

// BlobStore is a flat, write-once namespace of byte blobs.
type BlobStore interface {
	// Put stores everything read from r under key. A partially written blob
	// is never visible under key.
	Put(ctx context.Context, key string, r io.Reader) (BlobInfo, error)

	// Open returns a reader for the blob stored under key.
	// Returns ErrBlobNotFound if nothing is stored there.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob stored under key.
	// Returns ErrBlobNotFound if nothing is stored there.
	Delete(ctx context.Context, key string) error
}
