// Package registry runs player and player-class operations against a
// record store. Every mutation follows the same path: load the record and
// its template, authorize the actor, apply the change to a clone, validate
// the clone, and write it back. A rejected operation never writes.
//
// The registry holds no locks. Callers keep a single writer per record.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/player/internal/record"
	"github.com/mesh-intelligence/player/pkg/types"
)

// Registry is the service over a record store, a token oracle and a key
// deriver.
type Registry struct {
	store  types.RecordStore
	oracle types.TokenOracle
	keys   types.KeyDeriver
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Registry.
func New(store types.RecordStore, oracle types.TokenOracle, keys types.KeyDeriver, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		oracle: oracle,
		keys:   keys,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// maxDepth bounds class parent chains.
const maxDepth = 64

// loadClass reads the class stored under key.
func (r *Registry) loadClass(ctx context.Context, key types.Key) (*types.PlayerClass, error) {
	rec, err := r.store.Read(ctx, key)
	if errors.Is(err, types.ErrRecordNotFound) {
		return nil, fmt.Errorf("class %s: %w", key, types.ErrClassNotFound)
	}
	if err != nil {
		return nil, err
	}
	if rec.Kind != types.KindClass {
		return nil, fmt.Errorf("record %s is a %s: %w", key, rec.Kind, types.ErrClassNotFound)
	}
	return record.DecodeClass(rec.Data)
}

// chain returns the classes from the one stored under key up to its root.
func (r *Registry) chain(ctx context.Context, key types.Key) ([]*types.PlayerClass, error) {
	var out []*types.PlayerClass
	seen := map[types.Key]bool{}
	for {
		if seen[key] || len(out) >= maxDepth {
			return nil, fmt.Errorf("class %s: %w", key, types.ErrCyclicParent)
		}
		seen[key] = true
		c, err := r.loadClass(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if c.Parent == nil {
			return out, nil
		}
		key = *c.Parent
	}
}

// resolve folds a chain from its root down and returns the effective view
// of its first class.
func resolve(chain []*types.PlayerClass) *types.PlayerClass {
	var eff *types.PlayerClass
	for i := len(chain) - 1; i >= 0; i-- {
		eff = chain[i].Effective(eff)
	}
	return eff
}

// effectiveClass returns the class stored under key with every inherited
// field resolved against its ancestors.
func (r *Registry) effectiveClass(ctx context.Context, key types.Key) (*types.PlayerClass, error) {
	chain, err := r.chain(ctx, key)
	if err != nil {
		return nil, err
	}
	return resolve(chain), nil
}

// parentOf returns the effective parent of c, or nil for a root class.
func (r *Registry) parentOf(ctx context.Context, c *types.PlayerClass) (*types.PlayerClass, error) {
	if c.Parent == nil {
		return nil, nil
	}
	return r.effectiveClass(ctx, *c.Parent)
}

func (r *Registry) writeClass(ctx context.Context, key types.Key, c *types.PlayerClass) error {
	data, err := record.EncodeClass(c)
	if err != nil {
		return err
	}
	rec := types.Record{Key: key, Kind: types.KindClass, Data: data}
	if c.Parent != nil {
		rec.Parent = *c.Parent
	}
	return r.store.Write(ctx, rec)
}

func (r *Registry) loadPlayer(ctx context.Context, key types.Key) (*types.Player, error) {
	rec, err := r.store.Read(ctx, key)
	if errors.Is(err, types.ErrRecordNotFound) {
		return nil, fmt.Errorf("player %s: %w", key, types.ErrPlayerNotFound)
	}
	if err != nil {
		return nil, err
	}
	if rec.Kind != types.KindPlayer {
		return nil, fmt.Errorf("record %s is a %s: %w", key, rec.Kind, types.ErrPlayerNotFound)
	}
	return record.DecodePlayer(rec.Data)
}

func (r *Registry) writePlayer(ctx context.Context, key types.Key, p *types.Player) error {
	data, err := record.EncodePlayer(p)
	if err != nil {
		return err
	}
	return r.store.Write(ctx, types.Record{Key: key, Kind: types.KindPlayer, Parent: p.Parent, Data: data})
}

// holds asks the oracle and turns a negative answer into denied.
func (r *Registry) holds(ctx context.Context, actor, mint types.ID, denied error) error {
	ok, err := r.oracle.HoldsToken(ctx, actor, mint)
	if err != nil {
		return fmt.Errorf("checking token %s: %w", mint, err)
	}
	if !ok {
		return fmt.Errorf("actor %s does not hold %s: %w", actor, mint, denied)
	}
	return nil
}
