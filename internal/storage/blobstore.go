package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// BlobStore holds opaque byte blobs by name. Put replaces a blob as a whole:
// readers observe either the previous contents or the new ones.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}
