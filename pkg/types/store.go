package types

import (
	"context"
	"fmt"
)

// Kind names the record type a stored record holds.
type Kind string

// Record kinds.
const (
	KindClass     Kind = "class"
	KindPlayer    Kind = "player"
	KindIndex     Kind = "index"
	KindWhitelist Kind = "whitelist"
)

// Kinds lists every record kind for enumeration.
var Kinds = []Kind{KindClass, KindPlayer, KindIndex, KindWhitelist}

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindClass, KindPlayer, KindIndex, KindWhitelist:
		return true
	}
	return false
}

// ParseKind decodes a record kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("parse kind %q: %w", s, ErrInvalidData)
	}
	return k, nil
}

// Record is one encoded entity as the storage collaborator sees it. Parent
// is the key of the template the record inherits from, or empty.
type Record struct {
	Key    Key
	Kind   Kind
	Parent Key
	Data   []byte
}

// RecordStore persists encoded records under derived keys. It is the only
// storage the model knows about; every operation is one record at a time.
type RecordStore interface {
	// Read returns the record stored under key, or ErrRecordNotFound.
	Read(ctx context.Context, key Key) (Record, error)

	// Write creates or replaces the record under rec.Key.
	Write(ctx context.Context, rec Record) error

	// Exists reports whether a record is stored under key.
	Exists(ctx context.Context, key Key) (bool, error)

	// Delete removes the record under key. Returns ErrRecordNotFound when
	// nothing is stored there.
	Delete(ctx context.Context, key Key) error

	// Dependents returns the records of the given kind whose parent is
	// parent, ordered by key.
	Dependents(ctx context.Context, parent Key, kind Kind) ([]Record, error)

	// List returns every record of the given kind, ordered by key.
	List(ctx context.Context, kind Kind) ([]Record, error)
}

// TokenLedger records token holdings for backends that answer ownership
// questions themselves.
type TokenLedger interface {
	TokenOracle
	Grant(ctx context.Context, actor, mint ID) error
	Revoke(ctx context.Context, actor, mint ID) error
}

// Backend is a RecordStore with a lifecycle and a token ledger. Callers
// attach to it, work through its methods, and detach when done.
type Backend interface {
	RecordStore
	TokenLedger

	// Attach connects the backend described by config. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, every
	// other method returns ErrStoreDetached.
	Detach() error
}

// KeyDeriver maps external identifiers to record keys. Implementations are
// deterministic: the same inputs always yield the same key.
type KeyDeriver interface {
	ClassKey(mint, namespace ID) Key
	PlayerKey(mint, namespace ID) Key
	IndexKey(mint ID) Key
	WhitelistKey(mint, namespace ID) Key
}

// Program is the identity of the deployment the records belong to. It is
// fixed at startup and scopes every derived key.
type Program struct {
	ID ID
}
