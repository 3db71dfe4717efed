package registry

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

// CreatePlayer stores a new instance of the class under classKey. The actor
// must hold the player mint and be allowed to create under the player's
// namespace for that class. Every inheritable field starts Inherited.
func (r *Registry) CreatePlayer(ctx context.Context, actor types.ID, classKey types.Key, id types.PlayerIdentity) (types.Key, *types.Player, error) {
	if id.Namespace.IsZero() {
		return "", nil, fmt.Errorf("player namespace: %w", types.ErrInvalidID)
	}
	tmpl, err := r.effectiveClass(ctx, classKey)
	if err != nil {
		return "", nil, err
	}
	key := r.keys.PlayerKey(id.Mint, id.Namespace)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, fmt.Errorf("player %s: %w", key, types.ErrAlreadyExists)
	}

	if err := r.holds(ctx, actor, id.Mint, types.ErrUpdateDenied); err != nil {
		return "", nil, err
	}
	ok, err := r.CanCreateUnderNamespace(ctx, actor, id.Namespace, tmpl.Mint)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("namespace %s: %w", id.Namespace, types.ErrNamespaceDenied)
	}

	p, err := types.NewPlayer(classKey, tmpl, id)
	if err != nil {
		return "", nil, err
	}
	if err := p.Validate(); err != nil {
		return "", nil, err
	}
	if err := r.writePlayer(ctx, key, p); err != nil {
		return "", nil, err
	}
	r.logger.Debug("player created", "key", key, "class", classKey)
	return key, p, nil
}

// GetPlayer returns the player as stored, including cached inherited values
// that may predate the latest class update.
func (r *Registry) GetPlayer(ctx context.Context, key types.Key) (*types.Player, error) {
	return r.loadPlayer(ctx, key)
}

// EffectivePlayer returns the player resolved against its class's current
// effective values. Nothing is written.
func (r *Registry) EffectivePlayer(ctx context.Context, key types.Key) (*types.Player, error) {
	p, err := r.loadPlayer(ctx, key)
	if err != nil {
		return nil, err
	}
	tmpl, err := r.effectiveClass(ctx, p.Parent)
	if err != nil {
		return nil, err
	}
	return p.Effective(tmpl), nil
}

// updatePlayer runs fn against a refreshed clone of the player under key
// and writes the clone when fn and validation succeed. The actor is checked
// against the player's effective policy before fn runs.
func (r *Registry) updatePlayer(ctx context.Context, actor types.ID, key types.Key, fn func(p *types.Player, tmpl *types.PlayerClass) error) (*types.Player, error) {
	p, err := r.loadPlayer(ctx, key)
	if err != nil {
		return nil, err
	}
	tmpl, err := r.effectiveClass(ctx, p.Parent)
	if err != nil {
		return nil, err
	}

	policy := p.EffectiveUpdatePermissiveness(tmpl)
	ok, err := types.Authorize(ctx, r.oracle, actor, policy, types.Ownership{Token: p.Mint, ClassToken: tmpl.Mint})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("player %s under %s: %w", key, policy.Kind, types.ErrUpdateDenied)
	}

	next := p.Clone()
	types.Propagate(tmpl, next)
	if err := fn(next, tmpl); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := r.writePlayer(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SetStatsURI overrides the player's stats URI.
func (r *Registry) SetStatsURI(ctx context.Context, actor types.ID, key types.Key, uri string) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.SetStatsURI(tmpl, uri)
	})
}

// SetCategory overrides the player's category.
func (r *Registry) SetCategory(ctx context.Context, actor types.ID, key types.Key, category string) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.SetCategory(tmpl, category)
	})
}

// SetUpdatePermissiveness overrides the policy gating the player. The
// current policy authorizes the change.
func (r *Registry) SetUpdatePermissiveness(ctx context.Context, actor types.ID, key types.Key, kind types.PermissivenessKind) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.SetUpdatePermissiveness(tmpl, kind)
	})
}

// SetStat writes the value of one of the player's stats.
func (r *Registry) SetStat(ctx context.Context, actor types.ID, key types.Key, name string, v types.StatValue) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.SetStat(tmpl, name, v)
	})
}

// AddStat gives the player a stat of its own.
func (r *Registry) AddStat(ctx context.Context, actor types.ID, key types.Key, name string, def types.BasicStatType) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, _ *types.PlayerClass) error {
		return p.AddStat(name, def)
	})
}

// RemoveStat drops a stat the player owns.
func (r *Registry) RemoveStat(ctx context.Context, actor types.ID, key types.Key, name string) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, _ *types.PlayerClass) error {
		return p.RemoveStat(name)
	})
}

// ResetStatsURI returns the stats URI to inheriting from the class.
func (r *Registry) ResetStatsURI(ctx context.Context, actor types.ID, key types.Key) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.ResetStatsURI(tmpl)
	})
}

// ResetCategory returns the category to inheriting from the class.
func (r *Registry) ResetCategory(ctx context.Context, actor types.ID, key types.Key) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.ResetCategory(tmpl)
	})
}

// ResetUpdatePermissiveness returns the policy to inheriting from the class.
func (r *Registry) ResetUpdatePermissiveness(ctx context.Context, actor types.ID, key types.Key) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.ResetUpdatePermissiveness(tmpl)
	})
}

// ResetStat returns a stat to inheriting from the class.
func (r *Registry) ResetStat(ctx context.Context, actor types.ID, key types.Key, name string) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.ResetStat(tmpl, name)
	})
}

// Equip appends an equipment slot.
func (r *Registry) Equip(ctx context.Context, actor types.ID, key types.Key, item types.EquippedItem) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.Equip(tmpl, item)
	})
}

// Unequip removes the slot holding item.
func (r *Registry) Unequip(ctx context.Context, actor types.ID, key types.Key, item types.ID) (*types.Player, error) {
	return r.updatePlayer(ctx, actor, key, func(p *types.Player, tmpl *types.PlayerClass) error {
		return p.Unequip(tmpl, item)
	})
}
