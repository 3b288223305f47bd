package vault

import (
	"context"
	"errors"
	"testing"

	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/storage"
)

var testKDF = cr.KDFParams{M: 64, T: 1, P: 1}

func newTestStore(t testing.TB, opts ...Option) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(dir, append([]Option{WithKDF(testKDF)}, opts...)...), dir
}

var errDiskFull = errors.New("disk full")

// failingStore wraps a BlobStore and fails Put for the named blob.
type failingStore struct {
	storage.BlobStore
	failPut string
}

func (f *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if name == f.failPut {
		return errDiskFull
	}
	return f.BlobStore.Put(ctx, name, data)
}
