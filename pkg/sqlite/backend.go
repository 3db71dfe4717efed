// Package sqlite is the public entry point to the SQLite record store. The
// returned backend is both the record store and the token oracle a
// registry.Registry needs.
//
//	backend, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".player",
//	})
//	if err != nil {
//	    return err
//	}
//	defer backend.Detach()
//	reg := registry.New(backend, backend, deriver)
package sqlite

import (
	"github.com/mesh-intelligence/player/internal/sqlite"
	"github.com/mesh-intelligence/player/pkg/types"
)

// NewBackend returns a detached SQLite backend.
func NewBackend() types.Backend {
	return sqlite.NewBackend()
}

// Open returns a backend already attached with config.
func Open(config types.Config) (types.Backend, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	return b, nil
}
