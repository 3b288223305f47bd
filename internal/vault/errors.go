package vault

import (
	"errors"
	"fmt"
)

// Kind classifies vault failures so callers can branch without matching strings.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIO
	KindNotFound
	KindCorruptState
	KindCorruptSalt
	KindAuthenticationFailed
	KindMalformedVault
	KindDerivationFailure
)

var kindText = map[Kind]string{
	KindUnknown:              "unknown error",
	KindIO:                   "i/o error",
	KindNotFound:             "vault file not found",
	KindCorruptState:         "salt file missing for existing vault",
	KindCorruptSalt:          "salt file is corrupt",
	KindAuthenticationFailed: "master password incorrect or data corrupted",
	KindMalformedVault:       "vault contents are malformed",
	KindDerivationFailure:    "key derivation failed",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is returned by every vault operation. Err keeps the internal cause for
// diagnostics; Error() for an authentication failure only ever reports the kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrIO                   = &Error{Kind: KindIO}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrCorruptState         = &Error{Kind: KindCorruptState}
	ErrCorruptSalt          = &Error{Kind: KindCorruptSalt}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrMalformedVault       = &Error{Kind: KindMalformedVault}
	ErrDerivationFailure    = &Error{Kind: KindDerivationFailure}
)

// ErrEmptyService is returned by Add for a record without a service name.
var ErrEmptyService = errors.New("vault: service must not be empty")

// ErrInvalidText is returned by Add for a record with a field that is not
// valid UTF-8. Such bytes cannot be stored verbatim.
var ErrInvalidText = errors.New("vault: record text must be valid utf-8")

func (e *Error) Error() string {
	msg := "vault"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil && e.Kind != KindAuthenticationFailed {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func opError(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
