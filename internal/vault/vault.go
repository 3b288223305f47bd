package vault

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/storage"
)

// State is what the filesystem says about a vault/salt pair.
type State uint8

const (
	// StateUninitialized: no vault file. A lone salt file also counts as
	// uninitialized: the next save reuses it.
	StateUninitialized State = iota
	StateSaltOnly
	StateInitialized
)

func (st State) String() string {
	switch st {
	case StateUninitialized:
		return "uninitialized"
	case StateSaltOnly:
		return "salt-only"
	case StateInitialized:
		return "initialized"
	}
	return "unknown"
}

// Store loads and saves a Vault as a single encrypted file whose key is derived
// from the master password and a salt kept in a separate file.
type Store struct {
	files  storage.BlobStore
	salts  *SaltStore
	kdf    cr.KDFParams
	cipher cr.Cipher
	log    logrus.FieldLogger
}

type Option func(*Store)

func WithKDF(p cr.KDFParams) Option { return func(s *Store) { s.kdf = p } }

func WithCipher(c cr.Cipher) Option { return func(s *Store) { s.cipher = c } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *Store) { s.log = l } }

func NewStore(files storage.BlobStore, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Store{
		files:  files,
		salts:  NewSaltStore(files),
		kdf:    cr.DefaultKDF(),
		cipher: cr.AESGCM,
		log:    discard,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewFileStore is NewStore over the local filesystem, resolving relative paths
// against dir.
func NewFileStore(dir string, opts ...Option) *Store {
	return NewStore(storage.NewFileStore(dir), opts...)
}

func (s *Store) State(ctx context.Context, vaultPath, saltPath string) (State, error) {
	hasVault, err := s.files.Exists(ctx, vaultPath)
	if err != nil {
		return StateUninitialized, opError("state", KindIO, err)
	}
	hasSalt, err := s.files.Exists(ctx, saltPath)
	if err != nil {
		return StateUninitialized, opError("state", KindIO, err)
	}
	switch {
	case hasVault:
		return StateInitialized, nil
	case hasSalt:
		return StateSaltOnly, nil
	}
	return StateUninitialized, nil
}

// Load decrypts the vault at vaultPath. A missing vault file is ErrNotFound;
// a vault without its salt is ErrCorruptState. A wrong password and a damaged
// file both surface as ErrAuthenticationFailed.
func (s *Store) Load(ctx context.Context, vaultPath, saltPath string, password []byte) (*Vault, error) {
	v, _, key, err := s.load(ctx, vaultPath, saltPath, password)
	cr.ZeroKey(&key)
	return v, err
}

// LoadOrInit is Load with a missing vault file mapped to an empty vault.
func (s *Store) LoadOrInit(ctx context.Context, vaultPath, saltPath string, password []byte) (*Vault, error) {
	v, err := s.Load(ctx, vaultPath, saltPath, password)
	if KindOf(err) == KindNotFound {
		return New(), nil
	}
	return v, err
}

// Save encrypts v and writes it to vaultPath. The first save of a vault creates
// its salt file; later saves reuse it. On failure the previous vault file is
// left in place, a salt created by this call is removed again and v is
// untouched.
func (s *Store) Save(ctx context.Context, v *Vault, vaultPath, saltPath string, password []byte) error {
	salt, created, err := s.obtainSalt(ctx, vaultPath, saltPath)
	if err != nil {
		return err
	}
	key, err := s.derive(salt, password)
	if err != nil {
		s.dropNewSalt(ctx, saltPath, created)
		return opError("save", KindDerivationFailure, err)
	}
	defer cr.ZeroKey(&key)
	if err := s.write(ctx, v, vaultPath, &key); err != nil {
		s.dropNewSalt(ctx, saltPath, created)
		return err
	}
	return nil
}

func (s *Store) load(ctx context.Context, vaultPath, saltPath string, password []byte) (*Vault, Salt, [cr.KeySize]byte, error) {
	const op = "load"
	var key [cr.KeySize]byte
	log := s.log.WithField("vault", vaultPath)

	blob, err := s.files.Get(ctx, vaultPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Debug("no vault file")
		return nil, Salt{}, key, opError(op, KindNotFound, err)
	case err != nil:
		return nil, Salt{}, key, opError(op, KindIO, err)
	}

	salt, err := s.salts.Load(ctx, saltPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.WithField("salt", saltPath).Error("vault present but salt missing")
		return nil, Salt{}, key, opError(op, KindCorruptState, err)
	case KindOf(err) != KindUnknown:
		return nil, Salt{}, key, err
	case err != nil:
		return nil, Salt{}, key, opError(op, KindIO, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, Salt{}, key, opError(op, KindUnknown, err)
	}
	key, err = s.derive(salt, password)
	if err != nil {
		return nil, Salt{}, key, opError(op, KindDerivationFailure, err)
	}

	pt, err := s.cipher.Open(key[:], blob)
	if err != nil {
		cr.ZeroKey(&key)
		if errors.Is(err, cr.ErrAuthentication) {
			log.Warn("vault authentication failed")
			return nil, Salt{}, key, opError(op, KindAuthenticationFailed, err)
		}
		return nil, Salt{}, key, opError(op, KindUnknown, err)
	}
	defer cr.Zero(pt)

	v, err := Decode(pt)
	if err != nil {
		cr.ZeroKey(&key)
		log.WithError(err).Error("vault decrypted but contents are malformed")
		return nil, Salt{}, key, err
	}
	log.WithField("records", v.Len()).Debug("vault loaded")
	return v, salt, key, nil
}

// obtainSalt is the only place a salt is ever created: when neither the vault
// nor the salt exists. A vault without a salt is never given a fresh one.
func (s *Store) obtainSalt(ctx context.Context, vaultPath, saltPath string) (Salt, bool, error) {
	const op = "save"
	log := s.log.WithFields(logrus.Fields{"vault": vaultPath, "salt": saltPath})

	hasVault, err := s.files.Exists(ctx, vaultPath)
	if err != nil {
		return Salt{}, false, opError(op, KindIO, err)
	}

	var (
		salt    Salt
		created bool
	)
	if hasVault {
		salt, err = s.salts.Load(ctx, saltPath)
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("refusing to create a salt for an existing vault")
			return Salt{}, false, opError(op, KindCorruptState, err)
		}
	} else {
		salt, created, err = s.salts.LoadOrCreate(ctx, saltPath)
	}
	switch {
	case KindOf(err) != KindUnknown:
		return Salt{}, false, err
	case err != nil:
		return Salt{}, false, opError(op, KindIO, err)
	}

	if created {
		log.Info("generated new salt")
	} else {
		log.Debug("using existing salt")
	}
	return salt, created, nil
}

// dropNewSalt removes a salt file that a failed first save just created, so
// the directory is left as it was found.
func (s *Store) dropNewSalt(ctx context.Context, saltPath string, created bool) {
	if !created {
		return
	}
	log := s.log.WithField("salt", saltPath)
	if err := s.files.Delete(context.WithoutCancel(ctx), saltPath); err != nil {
		log.WithError(err).Warn("could not remove salt left by failed save")
		return
	}
	log.Debug("removed salt left by failed save")
}

func (s *Store) derive(salt Salt, password []byte) ([cr.KeySize]byte, error) {
	return cr.DeriveKey(password, salt[:], s.kdf)
}

func (s *Store) write(ctx context.Context, v *Vault, vaultPath string, key *[cr.KeySize]byte) error {
	const op = "save"
	if v == nil {
		return opError(op, KindUnknown, errors.New("nil vault"))
	}
	pt, err := Encode(v)
	if err != nil {
		return err
	}
	defer cr.Zero(pt)

	blob, err := s.cipher.Seal(key[:], pt)
	if err != nil {
		return opError(op, KindUnknown, err)
	}
	if err := s.files.Put(ctx, vaultPath, blob); err != nil {
		s.log.WithField("vault", vaultPath).WithError(err).Error("vault write failed")
		return opError(op, KindIO, err)
	}
	s.log.WithFields(logrus.Fields{"vault": vaultPath, "records": v.Len()}).Info("vault saved")
	return nil
}
