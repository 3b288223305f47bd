package vault

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/storage"
)

var ErrSessionClosed = errors.New("vault: session closed")

// Session binds one vault file, its salt file and the master password for the
// life of a process. Once the vault has been loaded or saved the (salt, key)
// pair is pinned and the password copy is dropped.
type Session struct {
	store     *Store
	vaultPath string
	saltPath  string

	password []byte
	salt     Salt
	key      [cr.KeySize]byte
	pinned   bool
	closed   bool
}

// Open loads the vault, or starts an empty one if the vault file does not
// exist yet. Every other load failure is returned and no session is created.
func (s *Store) Open(ctx context.Context, vaultPath, saltPath string, password []byte) (*Session, *Vault, error) {
	sess := &Session{store: s, vaultPath: vaultPath, saltPath: saltPath}

	v, salt, key, err := s.load(ctx, vaultPath, saltPath, password)
	switch {
	case err == nil:
		sess.pin(salt, key)
	case KindOf(err) == KindNotFound:
		sess.password = append([]byte(nil), password...)
		v = New()
	default:
		return nil, nil, err
	}
	return sess, v, nil
}

func (sess *Session) VaultPath() string { return sess.vaultPath }
func (sess *Session) SaltPath() string  { return sess.saltPath }

// Pinned reports whether the session holds a derived key.
func (sess *Session) Pinned() bool { return sess.pinned }

// Save writes v under the session key. The first save of a new vault creates
// the salt file and pins the key derived from it.
func (sess *Session) Save(ctx context.Context, v *Vault) error {
	if sess.closed {
		return ErrSessionClosed
	}
	created := false
	if !sess.pinned {
		salt, isNew, err := sess.store.obtainSalt(ctx, sess.vaultPath, sess.saltPath)
		if err != nil {
			return err
		}
		key, err := sess.store.derive(salt, sess.password)
		if err != nil {
			sess.store.dropNewSalt(ctx, sess.saltPath, isNew)
			return opError("save", KindDerivationFailure, err)
		}
		sess.pin(salt, key)
		created = isNew
	} else if err := sess.checkSalt(ctx); err != nil {
		return err
	}
	if err := sess.store.write(ctx, v, sess.vaultPath, &sess.key); err != nil {
		// The pinned salt is written back by the next Save.
		sess.store.dropNewSalt(ctx, sess.saltPath, created)
		return err
	}
	return nil
}

// checkSalt makes sure the salt on disk is still the one the key came from.
// A deleted salt file is restored from the pinned copy.
func (sess *Session) checkSalt(ctx context.Context) error {
	onDisk, err := sess.store.salts.Load(ctx, sess.saltPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sess.store.log.WithField("salt", sess.saltPath).Warn("salt file missing, restoring pinned salt")
		if err := sess.store.files.Put(ctx, sess.saltPath, sess.salt[:]); err != nil {
			return opError("save", KindIO, err)
		}
		return nil
	case KindOf(err) != KindUnknown:
		return err
	case err != nil:
		return opError("save", KindIO, err)
	}
	if subtle.ConstantTimeCompare(onDisk[:], sess.salt[:]) != 1 {
		return opError("save", KindCorruptState,
			fmt.Errorf("salt file %s changed during the session", sess.saltPath))
	}
	return nil
}

func (sess *Session) pin(salt Salt, key [cr.KeySize]byte) {
	sess.salt = salt
	sess.key = key
	sess.pinned = true
	cr.Zero(sess.password)
	sess.password = nil
	if err := cr.LockMemory(sess.key[:]); err != nil {
		sess.store.log.WithError(err).Debug("could not lock key memory")
	}
}

// Close wipes the key and password copies. The session cannot be used again.
func (sess *Session) Close() {
	if sess.closed {
		return
	}
	if sess.pinned {
		cr.ZeroKey(&sess.key)
		_ = cr.UnlockMemory(sess.key[:])
	}
	cr.Zero(sess.password)
	sess.password = nil
	sess.closed = true
}
