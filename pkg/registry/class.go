package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/player/internal/record"
	"github.com/mesh-intelligence/player/pkg/types"
)

// CreateClass stores draft under its (mint, namespace) key. A root class
// requires the actor to hold the class mint; a child class requires the
// parent's mint. Inherited fields of a child are filled from the parent's
// effective values before validation. Fields the child owns must lie in
// domains the parent leaves overridable. An indexed class is registered in
// its mint's namespace index; a full index rejects the class before anything
// is written. The class is written before the index, and a failed index
// write deletes the class again.
func (r *Registry) CreateClass(ctx context.Context, actor types.ID, draft *types.PlayerClass) (types.Key, *types.PlayerClass, error) {
	if draft.Namespace.IsZero() {
		return "", nil, fmt.Errorf("class namespace: %w", types.ErrInvalidID)
	}
	c := draft.Clone()
	key := r.keys.ClassKey(c.Mint, c.Namespace)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, fmt.Errorf("class %s: %w", key, types.ErrAlreadyExists)
	}

	authority := c.Mint
	if c.Parent != nil {
		if *c.Parent == key {
			return "", nil, fmt.Errorf("class %s: %w", key, types.ErrCyclicParent)
		}
		chain, err := r.chain(ctx, *c.Parent)
		if err != nil {
			return "", nil, err
		}
		parent := resolve(chain)
		if err := c.CheckPolicies(parent); err != nil {
			return "", nil, err
		}
		if err := c.CheckOverrides(parent); err != nil {
			return "", nil, err
		}
		c.OwnLocalStats(parent)
		types.PropagateClass(parent, c)
		authority = parent.Mint
	}
	if err := r.holds(ctx, actor, authority, types.ErrUpdateDenied); err != nil {
		return "", nil, err
	}
	if err := c.Validate(); err != nil {
		return "", nil, err
	}

	var index *types.PlayerClassIndex
	if c.Indexed {
		index, err = r.Index(ctx, c.Mint)
		if err != nil {
			return "", nil, err
		}
		if err := index.Register(c.Namespace); err != nil {
			return "", nil, fmt.Errorf("registering %s: %w", c.Namespace, err)
		}
	}

	if err := r.writeClass(ctx, key, c); err != nil {
		return "", nil, err
	}
	if index != nil {
		if err := r.writeIndex(ctx, c.Mint, index); err != nil {
			return "", nil, r.undo(ctx, key, err, func() error { return r.store.Delete(ctx, key) })
		}
	}
	r.logger.Debug("class created", "key", key, "mint", c.Mint, "namespace", c.Namespace)
	return key, c, nil
}

// GetClass returns the class as stored.
func (r *Registry) GetClass(ctx context.Context, key types.Key) (*types.PlayerClass, error) {
	return r.loadClass(ctx, key)
}

// EffectiveClass returns the class with every inherited field resolved
// against its ancestors and its effective propagation entries.
func (r *Registry) EffectiveClass(ctx context.Context, key types.Key) (*types.PlayerClass, error) {
	return r.effectiveClass(ctx, key)
}

// ClassMutation changes a class. parent is the effective parent, or nil for
// a root class.
type ClassMutation func(c, parent *types.PlayerClass) error

// SetClassStatsURI writes the starting stats URI.
func SetClassStatsURI(uri string) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.SetStatsURI(parent, uri) }
}

// SetClassCategory writes the default category.
func SetClassCategory(category string) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.SetCategory(parent, category) }
}

// SetClassUpdatePermissiveness writes the default update policy.
func SetClassUpdatePermissiveness(kind types.PermissivenessKind) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.SetUpdatePermissiveness(parent, kind) }
}

// SetClassPropagation replaces the class's own propagation entries.
func SetClassPropagation(policies types.PropagationPolicies) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.SetPropagation(parent, policies) }
}

// SetClassStat writes the starting value of a stat.
func SetClassStat(name string, v types.StatValue) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.SetStat(parent, name, v) }
}

// DefineClassStat adds a stat or replaces its definition.
func DefineClassStat(name string, def types.BasicStatType) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.DefineStat(parent, name, def) }
}

// RemoveClassStat drops a stat the class owns.
func RemoveClassStat(name string) ClassMutation {
	return func(c, _ *types.PlayerClass) error { return c.RemoveStat(name) }
}

// ResetClassStatsURI returns the stats URI to inheriting.
func ResetClassStatsURI() ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.ResetStatsURI(parent) }
}

// ResetClassCategory returns the category to inheriting.
func ResetClassCategory() ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.ResetCategory(parent) }
}

// ResetClassUpdatePermissiveness returns the policy to inheriting.
func ResetClassUpdatePermissiveness() ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.ResetUpdatePermissiveness(parent) }
}

// ResetClassStat returns a stat to inheriting.
func ResetClassStat(name string) ClassMutation {
	return func(c, parent *types.PlayerClass) error { return c.ResetStat(parent, name) }
}

// UpdateClass applies muts to the class under key and fans the result out to
// child classes and players. The class is gated by its effective default
// policy: TokenHolderCanUpdate consults the class mint,
// PlayerClassHolderCanUpdate the parent's mint (the class's own for a root).
//
// The class write either happens in full or not at all. Fan-out is not
// atomic: the report lists what was refreshed, and a non-nil error alongside
// a non-nil class means only the fan-out failed.
func (r *Registry) UpdateClass(ctx context.Context, actor types.ID, key types.Key, muts ...ClassMutation) (*types.PlayerClass, *PropagationReport, error) {
	c, err := r.loadClass(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	parent, err := r.parentOf(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	own := types.Ownership{Token: c.Mint, ClassToken: c.Mint}
	if parent != nil {
		own.ClassToken = parent.Mint
	}
	policy := c.Effective(parent).DefaultUpdatePermissiveness
	ok, err := types.Authorize(ctx, r.oracle, actor, policy, own)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("class %s under %s: %w", key, policy.Kind, types.ErrUpdateDenied)
	}

	next := c.Clone()
	if parent != nil {
		types.PropagateClass(parent, next)
	}
	for _, mut := range muts {
		if err := mut(next, parent); err != nil {
			return nil, nil, err
		}
	}
	if err := next.Validate(); err != nil {
		return nil, nil, err
	}
	if err := r.writeClass(ctx, key, next); err != nil {
		return nil, nil, err
	}
	r.logger.Debug("class updated", "key", key, "mutations", len(muts))

	report, err := r.Propagate(ctx, key)
	return next, report, err
}

// CloseClass deletes a class that has no child classes and no players. The
// actor must hold the class mint. An indexed class is removed from its
// mint's index first; if the class cannot then be deleted the namespace is
// registered again.
func (r *Registry) CloseClass(ctx context.Context, actor types.ID, key types.Key) error {
	c, err := r.loadClass(ctx, key)
	if err != nil {
		return err
	}
	if err := r.holds(ctx, actor, c.Mint, types.ErrUpdateDenied); err != nil {
		return err
	}
	for _, kind := range []types.Kind{types.KindClass, types.KindPlayer} {
		deps, err := r.store.Dependents(ctx, key, kind)
		if err != nil {
			return err
		}
		if len(deps) > 0 {
			return fmt.Errorf("class %s has %d %s records: %w", key, len(deps), kind, types.ErrHasDependents)
		}
	}
	if c.Indexed {
		index, err := r.Index(ctx, c.Mint)
		if err != nil {
			return err
		}
		index.Unregister(c.Namespace)
		if err := r.writeIndex(ctx, c.Mint, index); err != nil {
			return err
		}
		if err := r.store.Delete(ctx, key); err != nil {
			return r.undo(ctx, key, err, func() error {
				if err := index.Register(c.Namespace); err != nil {
					return err
				}
				return r.writeIndex(ctx, c.Mint, index)
			})
		}
	} else if err := r.store.Delete(ctx, key); err != nil {
		return err
	}
	r.logger.Debug("class closed", "key", key)
	return nil
}

// Index returns the namespace index of mint. A mint that was never indexed
// has an empty index.
func (r *Registry) Index(ctx context.Context, mint types.ID) (*types.PlayerClassIndex, error) {
	rec, err := r.store.Read(ctx, r.keys.IndexKey(mint))
	if errors.Is(err, types.ErrRecordNotFound) {
		return &types.PlayerClassIndex{}, nil
	}
	if err != nil {
		return nil, err
	}
	return record.DecodeIndex(rec.Data)
}

// undo runs restore after a later write of a two-record operation failed
// with err, so the records that were already written agree again.
func (r *Registry) undo(ctx context.Context, key types.Key, err error, restore func() error) error {
	if rerr := restore(); rerr != nil {
		r.logger.ErrorContext(ctx, "rollback failed", "key", key, "error", rerr)
		return errors.Join(err, rerr)
	}
	r.logger.DebugContext(ctx, "rolled back", "key", key, "error", err)
	return err
}

func (r *Registry) writeIndex(ctx context.Context, mint types.ID, index *types.PlayerClassIndex) error {
	data, err := record.EncodeIndex(index)
	if err != nil {
		return err
	}
	return r.store.Write(ctx, types.Record{Key: r.keys.IndexKey(mint), Kind: types.KindIndex, Data: data})
}
