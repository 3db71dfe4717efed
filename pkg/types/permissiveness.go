package types

import (
	"context"
	"fmt"
)

// PermissivenessKind selects who may update a record.
type PermissivenessKind uint8

const (
	// TokenHolderCanUpdate: the holder of the record's own token.
	TokenHolderCanUpdate PermissivenessKind = iota
	// PlayerClassHolderCanUpdate: the holder of the template's token.
	PlayerClassHolderCanUpdate
	// AnybodyCanUpdate: any actor.
	AnybodyCanUpdate
)

var permissivenessNames = map[PermissivenessKind]string{
	TokenHolderCanUpdate:       "token_holder",
	PlayerClassHolderCanUpdate: "player_class_holder",
	AnybodyCanUpdate:           "anybody",
}

// Valid reports whether k is a known policy.
func (k PermissivenessKind) Valid() bool {
	_, ok := permissivenessNames[k]
	return ok
}

func (k PermissivenessKind) String() string {
	if name, ok := permissivenessNames[k]; ok {
		return name
	}
	return fmt.Sprintf("permissiveness(%d)", uint8(k))
}

// MarshalText encodes the policy by name.
func (k PermissivenessKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidPolicy
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a policy name.
func (k *PermissivenessKind) UnmarshalText(text []byte) error {
	for kind, name := range permissivenessNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("parse permissiveness %q: %w", text, ErrInvalidPolicy)
}

// UpdatePermissiveness is an update policy. The policy itself carries an
// inheritance state: an instance may inherit its template's policy or
// override it, independently of the values the policy guards.
type UpdatePermissiveness struct {
	Kind      PermissivenessKind `json:"kind" yaml:"kind"`
	Inherited InheritanceState   `json:"inherited" yaml:"inherited"`
}

// Validate checks the kind and state.
func (u UpdatePermissiveness) Validate() error {
	if !u.Kind.Valid() {
		return ErrInvalidPolicy
	}
	if !u.Inherited.Valid() {
		return ErrInvalidState
	}
	return nil
}

// TokenOracle answers token ownership questions. Transfer mechanics belong
// to the ledger behind it.
type TokenOracle interface {
	HoldsToken(ctx context.Context, actor, mint ID) (bool, error)
}

// Ownership names the tokens a policy may consult: the record's own token
// and its template's.
type Ownership struct {
	Token      ID
	ClassToken ID
}

// Authorize reports whether actor may update under policy. AnybodyCanUpdate
// never consults the oracle.
func Authorize(ctx context.Context, oracle TokenOracle, actor ID, policy UpdatePermissiveness, own Ownership) (bool, error) {
	switch policy.Kind {
	case AnybodyCanUpdate:
		return true, nil
	case TokenHolderCanUpdate:
		return oracle.HoldsToken(ctx, actor, own.Token)
	case PlayerClassHolderCanUpdate:
		return oracle.HoldsToken(ctx, actor, own.ClassToken)
	default:
		return false, ErrInvalidPolicy
	}
}
