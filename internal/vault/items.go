package vault

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Record is one stored credential. A nil Username means the record has none,
// which is distinct from an empty one.
type Record struct {
	Service  string
	Username *string
	Secret   string
}

// NewRecord builds a record; an empty username is stored as absent.
func NewRecord(service, username, secret string) Record {
	r := Record{Service: service, Secret: secret}
	if username != "" {
		r.Username = &username
	}
	return r
}

// UsernameOr returns the username, or def when the record has none.
func (r Record) UsernameOr(def string) string {
	if r.Username == nil {
		return def
	}
	return *r.Username
}

// checkText reports the first field that is not valid UTF-8.
func (r Record) checkText() error {
	switch {
	case !utf8.ValidString(r.Service):
		return errors.New("service is not valid utf-8")
	case r.Username != nil && !utf8.ValidString(*r.Username):
		return errors.New("username is not valid utf-8")
	case !utf8.ValidString(r.Secret):
		return errors.New("password is not valid utf-8")
	}
	return nil
}

func (r Record) clone() Record {
	if r.Username != nil {
		u := *r.Username
		r.Username = &u
	}
	return r
}

// Vault is an ordered list of records. Services are not required to be unique;
// lookups and removals act on the first match in insertion order.
type Vault struct {
	records []Record
}

func New(records ...Record) *Vault {
	v := &Vault{records: make([]Record, 0, len(records))}
	for _, r := range records {
		v.records = append(v.records, r.clone())
	}
	return v
}

// Add appends r. It does not check for an existing record with the same service.
func (v *Vault) Add(r Record) error {
	if r.Service == "" {
		return ErrEmptyService
	}
	if err := r.checkText(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidText, err)
	}
	v.records = append(v.records, r.clone())
	return nil
}

// Remove drops the first record for service and reports whether one was found.
func (v *Vault) Remove(service string) bool {
	i := v.index(service)
	if i < 0 {
		return false
	}
	v.records = append(v.records[:i], v.records[i+1:]...)
	return true
}

// Find returns a copy of the first record for service.
func (v *Vault) Find(service string) (Record, bool) {
	i := v.index(service)
	if i < 0 {
		return Record{}, false
	}
	return v.records[i].clone(), true
}

// List returns copies of all records in insertion order.
func (v *Vault) List() []Record {
	out := make([]Record, len(v.records))
	for i, r := range v.records {
		out[i] = r.clone()
	}
	return out
}

func (v *Vault) Len() int { return len(v.records) }

func (v *Vault) index(service string) int {
	for i, r := range v.records {
		if r.Service == service {
			return i
		}
	}
	return -1
}
