package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/player/internal/keys"
	"github.com/mesh-intelligence/player/internal/sqlite"
	"github.com/mesh-intelligence/player/pkg/types"
)

func id(v byte) types.ID {
	var out types.ID
	out[0] = v
	return out
}

var (
	owner      = id(100)
	stranger   = id(101)
	classMint  = id(1)
	playerMint = id(2)
	namespace  = id(9)
)

type fixture struct {
	ctx     context.Context
	reg     *Registry
	backend *sqlite.Backend
	keys    *keys.Deriver
}

// newFixture returns a registry over a fresh SQLite backend in which owner
// holds the class and player mints.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	f := &fixture{
		ctx:     context.Background(),
		backend: b,
		keys:    keys.New(types.Program{ID: id(77)}),
	}
	f.reg = New(b, b, f.keys, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f.grant(t, owner, classMint)
	f.grant(t, owner, playerMint)
	return f
}

func (f *fixture) grant(t *testing.T, actor, mint types.ID) {
	t.Helper()
	require.NoError(t, f.backend.Grant(f.ctx, actor, mint))
}

func rootClass(policies ...types.ChildUpdatePropagationPermissiveness) *types.PlayerClass {
	return &types.PlayerClass{
		Mint:                                 classMint,
		Namespace:                            namespace,
		StartingStatsURI:                     types.StatsURI{URI: "https://example.com/stats.json"},
		DefaultCategory:                      types.PlayerCategory{Category: "warrior"},
		DefaultUpdatePermissiveness:          types.UpdatePermissiveness{Kind: types.TokenHolderCanUpdate},
		ChildUpdatePropagationPermissiveness: policies,
		BasicStats: types.Stats{
			{Name: "strength", Type: types.IntegerStat(types.Bound(0), types.Bound(10), 5)},
			{Name: "rank", Type: types.EnumStat(0, "A", "B", "C")},
		},
	}
}

// childClass returns a draft that inherits every field from parent.
func childClass(parent types.Key, mint types.ID) *types.PlayerClass {
	return &types.PlayerClass{
		Mint:                        mint,
		Namespace:                   namespace,
		StartingStatsURI:            types.StatsURI{Inherited: types.Inherited},
		DefaultCategory:             types.PlayerCategory{Inherited: types.Inherited},
		DefaultUpdatePermissiveness: types.UpdatePermissiveness{Inherited: types.Inherited},
		Parent:                      &parent,
	}
}

func (f *fixture) createRoot(t *testing.T, policies ...types.ChildUpdatePropagationPermissiveness) types.Key {
	t.Helper()
	key, _, err := f.reg.CreateClass(f.ctx, owner, rootClass(policies...))
	require.NoError(t, err)
	return key
}

func (f *fixture) createPlayer(t *testing.T, classKey types.Key) types.Key {
	t.Helper()
	key, _, err := f.reg.CreatePlayer(f.ctx, owner, classKey, types.PlayerIdentity{Mint: playerMint, Namespace: namespace})
	require.NoError(t, err)
	return key
}

func stat(t *testing.T, stats types.Stats, name string) types.BasicStat {
	t.Helper()
	s, err := stats.Get(name)
	require.NoError(t, err)
	return s
}

var errInjected = errors.New("injected store failure")

// faultyStore fails writes of one record kind, and deletes when failDelete
// is set.
type faultyStore struct {
	types.RecordStore
	failWrite  types.Kind
	failDelete bool
}

func (s *faultyStore) Write(ctx context.Context, rec types.Record) error {
	if rec.Kind == s.failWrite {
		return errInjected
	}
	return s.RecordStore.Write(ctx, rec)
}

func (s *faultyStore) Delete(ctx context.Context, key types.Key) error {
	if s.failDelete {
		return errInjected
	}
	return s.RecordStore.Delete(ctx, key)
}

// faulty returns a registry over the fixture's backend through s.
func (f *fixture) faulty(s *faultyStore) *Registry {
	s.RecordStore = f.backend
	return New(s, f.backend, f.keys, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}
