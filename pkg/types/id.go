package types

import (
	"encoding/hex"
	"fmt"
)

// IDSize is the byte length of an external identifier (mint, metadata,
// edition, namespace, actor).
const IDSize = 32

// ID is an opaque external identifier such as a token mint or a namespace
// authority. The core compares IDs but never interprets them.
type ID [IDSize]byte

// ParseID decodes a hex-encoded identifier.
func ParseID(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != IDSize {
		return id, fmt.Errorf("parse id %q: %w", s, ErrInvalidID)
	}
	copy(id[:], b)
	return id, nil
}

// MustParseID is ParseID for constants and tests; it panics on bad input.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText encodes the identifier as hex.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex identifier.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Key is a derived record identifier produced by a KeyDeriver. The core
// treats it as opaque.
type Key string
