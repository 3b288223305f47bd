package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

var ErrInvalidKDFParams = errors.New("crypto: invalid key derivation parameters")

// KDFParams are the Argon2id cost parameters. M is in KiB.
type KDFParams struct {
	M uint32
	T uint32
	P uint8
}

// DefaultKDF returns the Argon2id reference defaults (19 MiB, 2 passes, 1 lane).
func DefaultKDF() KDFParams {
	return KDFParams{M: 19 * 1024, T: 2, P: 1}
}

func (p KDFParams) Validate() error {
	switch {
	case p.T < 1:
		return fmt.Errorf("%w: time cost %d", ErrInvalidKDFParams, p.T)
	case p.P < 1:
		return fmt.Errorf("%w: parallelism %d", ErrInvalidKDFParams, p.P)
	case p.M < 8*uint32(p.P):
		return fmt.Errorf("%w: memory %d KiB below 8*p", ErrInvalidKDFParams, p.M)
	}
	return nil
}

// DeriveKey stretches the master password into a 256-bit key. The password is
// used as given, without trimming or padding.
func DeriveKey(password, salt []byte, p KDFParams) (key [KeySize]byte, err error) {
	if err := p.Validate(); err != nil {
		return key, err
	}
	if len(salt) != SaltSize {
		return key, fmt.Errorf("%w: salt is %d bytes, want %d", ErrInvalidKDFParams, len(salt), SaltSize)
	}
	k := argon2.IDKey(password, salt, p.T, p.M, p.P, KeySize)
	copy(key[:], k)
	Zero(k)
	return key, nil
}
