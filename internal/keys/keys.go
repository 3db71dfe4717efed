// Package keys derives deterministic record keys from program identity,
// token mints and namespaces.
//
// Keys are name-based UUIDs (version 5). The program identity selects the
// UUID namespace, so two programs never share a key. Classes and players
// share a seed: a mint in a namespace is either a class or a player, never
// both.
package keys

import (
	"github.com/google/uuid"

	"github.com/mesh-intelligence/player/pkg/types"
)

const (
	seedPlayer    = "player"
	seedWhitelist = "whitelist"
)

// Deriver implements types.KeyDeriver.
type Deriver struct {
	space uuid.UUID
}

// New returns a Deriver scoped to program.
func New(program types.Program) *Deriver {
	return &Deriver{space: uuid.NewSHA1(uuid.NameSpaceOID, join([]byte(seedPlayer), program.ID[:]))}
}

// ClassKey derives the key of the class minted as mint in namespace.
func (d *Deriver) ClassKey(mint, namespace types.ID) types.Key {
	return d.derive([]byte(seedPlayer), mint[:], namespace[:])
}

// PlayerKey derives the key of the player minted as mint in namespace. It
// equals ClassKey for the same inputs.
func (d *Deriver) PlayerKey(mint, namespace types.ID) types.Key {
	return d.derive([]byte(seedPlayer), mint[:], namespace[:])
}

// IndexKey derives the key of the namespace index of a class mint.
func (d *Deriver) IndexKey(mint types.ID) types.Key {
	return d.derive([]byte(seedPlayer), mint[:])
}

// WhitelistKey derives the key of the whitelist entry for namespace on a
// class mint.
func (d *Deriver) WhitelistKey(mint, namespace types.ID) types.Key {
	return d.derive([]byte(seedPlayer), mint[:], namespace[:], []byte(seedWhitelist))
}

func (d *Deriver) derive(parts ...[]byte) types.Key {
	return types.Key(uuid.NewSHA1(d.space, join(parts...)).String())
}

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var _ types.KeyDeriver = (*Deriver)(nil)
