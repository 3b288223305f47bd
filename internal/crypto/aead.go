package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	NonceSize = 12
	TagSize   = 16
)

var (
	// ErrAuthentication covers a truncated blob, a bad tag and a wrong key alike.
	ErrAuthentication = errors.New("crypto: message authentication failed")
	ErrInvalidKeySize = errors.New("crypto: key must be 32 bytes")
	ErrUnknownCipher  = errors.New("crypto: unknown cipher")
)

// Cipher selects the AEAD used to seal a vault. Both produce nonce || ciphertext || tag
// with a 12-byte nonce and a 16-byte tag.
type Cipher uint8

const (
	AESGCM Cipher = iota
	ChaCha20Poly1305
)

var cipherRegistry = map[Cipher]func([]byte) (cipher.AEAD, error){
	AESGCM: func(key []byte) (cipher.AEAD, error) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("aes: %w", err)
		}
		return cipher.NewGCM(block)
	},
	ChaCha20Poly1305: func(key []byte) (cipher.AEAD, error) {
		return chacha20poly1305.New(key)
	},
}

func (c Cipher) String() string {
	switch c {
	case AESGCM:
		return "aes-256-gcm"
	case ChaCha20Poly1305:
		return "chacha20-poly1305"
	}
	return fmt.Sprintf("cipher(%d)", uint8(c))
}

// ParseCipher maps a cipher name as printed by String back to a Cipher.
func ParseCipher(name string) (Cipher, error) {
	for c := range cipherRegistry {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

func (c Cipher) aead(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	build, ok := cipherRegistry[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCipher, uint8(c))
	}
	return build(key)
}

// Seal encrypts plaintext under a fresh random nonce and returns nonce || ciphertext.
func (c Cipher) Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: nonce: %w", err)
	}
	out := make([]byte, 0, NonceSize+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (c Cipher) Open(key, blob []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < NonceSize+TagSize {
		return nil, ErrAuthentication
	}
	pt, err := aead.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return pt, nil
}

func Seal(key, plaintext []byte) ([]byte, error) { return AESGCM.Seal(key, plaintext) }

func Open(key, blob []byte) ([]byte, error) { return AESGCM.Open(key, blob) }
