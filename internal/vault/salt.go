package vault

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/storage"
)

// Salt is the raw KDF salt kept in its own file, next to the vault.
type Salt [cr.SaltSize]byte

func NewSalt() (Salt, error) {
	var s Salt
	if _, err := rand.Read(s[:]); err != nil {
		return s, fmt.Errorf("generate salt: %w", err)
	}
	return s, nil
}

// SaltStore reads and creates salt files. The file holds exactly the salt bytes.
type SaltStore struct {
	files storage.BlobStore
}

func NewSaltStore(files storage.BlobStore) *SaltStore {
	return &SaltStore{files: files}
}

// Load reads an existing salt. A missing file yields storage.ErrNotFound.
func (s *SaltStore) Load(ctx context.Context, path string) (Salt, error) {
	var salt Salt
	b, err := s.files.Get(ctx, path)
	if err != nil {
		return salt, err
	}
	if len(b) != cr.SaltSize {
		return salt, opError("load salt", KindCorruptSalt,
			fmt.Errorf("%s: %d bytes, want %d", path, len(b), cr.SaltSize))
	}
	copy(salt[:], b)
	return salt, nil
}

// LoadOrCreate returns the salt at path, generating and persisting a new one
// when the file does not exist yet. created reports which case occurred.
func (s *SaltStore) LoadOrCreate(ctx context.Context, path string) (salt Salt, created bool, err error) {
	salt, err = s.Load(ctx, path)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return salt, false, err
	}
	if salt, err = NewSalt(); err != nil {
		return salt, false, err
	}
	if err := s.files.Put(ctx, path, salt[:]); err != nil {
		return Salt{}, false, fmt.Errorf("write salt %s: %w", path, err)
	}
	return salt, true, nil
}
