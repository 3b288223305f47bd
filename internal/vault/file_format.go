package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// On-disk plaintext layout, sealed before it reaches the file:
//
//	{
//	  "passwords": [
//	    {"service": "...", "username": "..." or null, "password": "..."}
//	  ]
//	}
type fileVault struct {
	Passwords *[]fileRecord `json:"passwords"`
}

type fileRecord struct {
	Service  *string `json:"service"`
	Username *string `json:"username"`
	Secret   *string `json:"password"`
}

var errMalformed = errors.New("malformed vault encoding")

// Encode serializes v canonically: fixed field order, two-space indentation,
// no HTML escaping and no trailing newline. Every field must be valid UTF-8.
func Encode(v *Vault) ([]byte, error) {
	recs := make([]fileRecord, 0, v.Len())
	for i, r := range v.records {
		if err := r.checkText(); err != nil {
			return nil, opError("encode", KindMalformedVault, fmt.Errorf("record %d: %w", i, err))
		}
		recs = append(recs, fileRecord{
			Service:  &r.Service,
			Username: r.Username,
			Secret:   &r.Secret,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fileVault{Passwords: &recs}); err != nil {
		return nil, opError("encode", KindMalformedVault, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses the output of Encode. Keys are matched exactly; unknown keys
// are ignored. Errors wrap ErrMalformedVault.
func Decode(b []byte) (*Vault, error) {
	if !utf8.Valid(b) {
		return nil, malformed(errors.New("invalid utf-8"))
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, malformed(err)
	}
	raw, ok := top["passwords"]
	if !ok || isNull(raw) {
		return nil, malformed(errors.New(`missing "passwords"`))
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed(fmt.Errorf(`"passwords": %w`, err))
	}

	v := &Vault{records: make([]Record, 0, len(items))}
	for i, item := range items {
		if item == nil {
			return nil, malformed(fmt.Errorf("record %d: not an object", i))
		}
		var fr fileRecord
		for _, f := range []struct {
			key string
			dst **string
		}{
			{"service", &fr.Service},
			{"username", &fr.Username},
			{"password", &fr.Secret},
		} {
			val, err := stringField(item, f.key)
			if err != nil {
				return nil, malformed(fmt.Errorf("record %d: %q: %w", i, f.key, err))
			}
			*f.dst = val
		}
		switch {
		case fr.Service == nil:
			return nil, malformed(fmt.Errorf(`record %d: missing "service"`, i))
		case fr.Secret == nil:
			return nil, malformed(fmt.Errorf(`record %d: missing "password"`, i))
		}
		v.records = append(v.records, Record{
			Service:  *fr.Service,
			Username: fr.Username,
			Secret:   *fr.Secret,
		})
	}
	return v, nil
}

// stringField returns nil for a missing or null key.
func stringField(obj map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func malformed(err error) error {
	return opError("decode", KindMalformedVault, fmt.Errorf("%w: %w", errMalformed, err))
}
