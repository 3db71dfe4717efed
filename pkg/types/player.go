package types

import (
	"fmt"
	"reflect"
	"slices"
)

// Player is an instance of exactly one PlayerClass. Inherited fields hold a
// cache of the class's effective value that propagation keeps current.
//
// A nil Category means the player always inherits its class's category and
// can never set one locally. A nil UpdatePermissiveness means the player
// uses its class's default policy.
type Player struct {
	Mint                 ID                    `json:"mint"`
	Metadata             ID                    `json:"metadata"`
	Edition              ID                    `json:"edition"`
	Namespace            ID                    `json:"namespace"`
	Parent               Key                   `json:"parent"`
	StatsURI             StatsURI              `json:"stats_uri"`
	Indexed              bool                  `json:"indexed"`
	Category             *PlayerCategory       `json:"category,omitempty"`
	UpdatePermissiveness *UpdatePermissiveness `json:"update_permissiveness,omitempty"`
	EquippedItems        []EquippedItem        `json:"equipped_items"`
	BasicStats           Stats                 `json:"basic_stats"`
}

// PlayerIdentity names the external identifiers of a new player.
type PlayerIdentity struct {
	Mint      ID
	Metadata  ID
	Edition   ID
	Namespace ID
	Indexed   bool
	// CategoryLocked creates the player without a local category slot.
	CategoryLocked bool
}

// NewPlayer creates a player of the class stored under parent. tmpl is that
// class's effective view. Every inheritable field starts Inherited.
func NewPlayer(parent Key, tmpl *PlayerClass, id PlayerIdentity) (*Player, error) {
	if parent == "" {
		return nil, fmt.Errorf("player parent: %w", ErrInvalidID)
	}
	if id.Mint.IsZero() {
		return nil, fmt.Errorf("player mint: %w", ErrInvalidID)
	}
	p := &Player{
		Mint:      id.Mint,
		Metadata:  id.Metadata,
		Edition:   id.Edition,
		Namespace: id.Namespace,
		Parent:    parent,
		Indexed:   id.Indexed,
		StatsURI:  StatsURI{Inherited: Inherited},
	}
	if !id.CategoryLocked {
		p.Category = &PlayerCategory{Inherited: Inherited}
	}
	Propagate(tmpl, p)
	return p, nil
}

// Validate checks identifiers, byte limits, states and definitions.
func (p *Player) Validate() error {
	if p.Mint.IsZero() {
		return fmt.Errorf("player mint: %w", ErrInvalidID)
	}
	if p.Parent == "" {
		return fmt.Errorf("player parent: %w", ErrInvalidID)
	}
	if len(p.StatsURI.URI) > MaxURIBytes {
		return ErrURITooLong
	}
	if !p.StatsURI.Inherited.Valid() {
		return ErrInvalidState
	}
	if p.Category != nil {
		if len(p.Category.Category) > MaxLabelBytes {
			return fmt.Errorf("category: %w", ErrLabelTooLong)
		}
		if !p.Category.Inherited.Valid() {
			return ErrInvalidState
		}
	}
	if p.UpdatePermissiveness != nil {
		if err := p.UpdatePermissiveness.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[ID]bool, len(p.EquippedItems))
	for _, e := range p.EquippedItems {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.Item] {
			return fmt.Errorf("item %s: %w", e.Item, ErrAlreadyEquipped)
		}
		seen[e.Item] = true
	}
	return p.BasicStats.Validate()
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	out := *p
	if p.Category != nil {
		c := *p.Category
		out.Category = &c
	}
	if p.UpdatePermissiveness != nil {
		u := *p.UpdatePermissiveness
		out.UpdatePermissiveness = &u
	}
	out.EquippedItems = slices.Clone(p.EquippedItems)
	out.BasicStats = p.BasicStats.Clone()
	return &out
}

// Effective returns the player as observed against tmpl, its class's
// effective view: every inherited field carries the class's current value
// and the policy slot is always filled.
func (p *Player) Effective(tmpl *PlayerClass) *Player {
	out := p.Clone()
	Propagate(tmpl, out)
	if out.Category == nil {
		out.Category = &PlayerCategory{Category: tmpl.DefaultCategory.Category, Inherited: Inherited}
	}
	policy := p.EffectiveUpdatePermissiveness(tmpl)
	out.UpdatePermissiveness = &policy
	return out
}

// EffectiveUpdatePermissiveness resolves the policy that gates updates to
// this player: its own unless it inherits, otherwise the class default.
func (p *Player) EffectiveUpdatePermissiveness(tmpl *PlayerClass) UpdatePermissiveness {
	if p.UpdatePermissiveness == nil || p.UpdatePermissiveness.Inherited == Inherited {
		return UpdatePermissiveness{Kind: tmpl.DefaultUpdatePermissiveness.Kind, Inherited: Inherited}
	}
	return *p.UpdatePermissiveness
}

// SetStatsURI writes the stats URI locally.
func (p *Player) SetStatsURI(tmpl *PlayerClass, uri string) error {
	return writeURI(&p.StatsURI, tmpl, uri)
}

// SetCategory writes the category locally.
func (p *Player) SetCategory(tmpl *PlayerClass, category string) error {
	if p.Category == nil {
		return ErrCategoryLocked
	}
	return writeCategory(p.Category, tmpl, category)
}

// SetUpdatePermissiveness overrides the policy gating this player.
func (p *Player) SetUpdatePermissiveness(tmpl *PlayerClass, kind PermissivenessKind) error {
	u := UpdatePermissiveness{Kind: tmpl.DefaultUpdatePermissiveness.Kind, Inherited: Inherited}
	if p.UpdatePermissiveness != nil {
		u = *p.UpdatePermissiveness
	}
	if err := writePolicy(&u, tmpl, kind); err != nil {
		return err
	}
	p.UpdatePermissiveness = &u
	return nil
}

// SetStat writes the value of an existing stat.
func (p *Player) SetStat(tmpl *PlayerClass, name string, v StatValue) error {
	return writeStat(p.BasicStats, tmpl, name, v)
}

// AddStat adds a stat the player owns outright.
func (p *Player) AddStat(name string, def BasicStatType) error {
	stats, err := addStat(p.BasicStats, name, def)
	if err != nil {
		return err
	}
	p.BasicStats = stats
	return nil
}

// RemoveStat drops a stat the player owns outright.
func (p *Player) RemoveStat(name string) error {
	stats, err := removeStat(p.BasicStats, name)
	if err != nil {
		return err
	}
	p.BasicStats = stats
	return nil
}

// ResetStatsURI returns the stats URI to inheriting from tmpl.
func (p *Player) ResetStatsURI(tmpl *PlayerClass) error {
	return resetURI(&p.StatsURI, tmpl)
}

// ResetCategory returns the category to inheriting from tmpl. A player
// without a category slot already inherits and is left as it is.
func (p *Player) ResetCategory(tmpl *PlayerClass) error {
	if p.Category == nil {
		return nil
	}
	return resetCategory(p.Category, tmpl)
}

// ResetUpdatePermissiveness returns the policy to inheriting from tmpl.
func (p *Player) ResetUpdatePermissiveness(tmpl *PlayerClass) error {
	if p.UpdatePermissiveness == nil {
		return nil
	}
	return resetPolicy(p.UpdatePermissiveness, tmpl)
}

// ResetStat returns a stat to inheriting from tmpl.
func (p *Player) ResetStat(tmpl *PlayerClass, name string) error {
	return resetStat(p.BasicStats, tmpl, name)
}

// Equip appends an item slot. The class must leave the Components domain
// overridable.
func (p *Player) Equip(tmpl *PlayerClass, item EquippedItem) error {
	if !tmpl.ChildUpdatePropagationPermissiveness.Overridable(DomainComponents) {
		return fmt.Errorf("%s: %w", DomainComponents, ErrNotOverridable)
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if slices.ContainsFunc(p.EquippedItems, func(e EquippedItem) bool { return e.Item == item.Item }) {
		return fmt.Errorf("item %s: %w", item.Item, ErrAlreadyEquipped)
	}
	p.EquippedItems = append(slices.Clone(p.EquippedItems), item)
	return nil
}

// Unequip removes the slot holding item.
func (p *Player) Unequip(tmpl *PlayerClass, item ID) error {
	if !tmpl.ChildUpdatePropagationPermissiveness.Overridable(DomainComponents) {
		return fmt.Errorf("%s: %w", DomainComponents, ErrNotOverridable)
	}
	i := slices.IndexFunc(p.EquippedItems, func(e EquippedItem) bool { return e.Item == item })
	if i < 0 {
		return fmt.Errorf("item %s: %w", item, ErrItemNotFound)
	}
	p.EquippedItems = slices.Delete(slices.Clone(p.EquippedItems), i, i+1)
	return nil
}

// Propagate refreshes every inherited field of p from tmpl, its class's
// effective view, and reports whether anything changed. Overridden and
// not-inherited fields are left untouched. Running it twice yields the same
// result as running it once.
func Propagate(tmpl *PlayerClass, p *Player) bool {
	before := p.Clone()

	p.StatsURI.URI = Resolve(p.StatsURI.Inherited, p.StatsURI.URI, tmpl.StartingStatsURI.URI)
	if p.Category != nil {
		p.Category.Category = Resolve(p.Category.Inherited, p.Category.Category, tmpl.DefaultCategory.Category)
	}
	if p.UpdatePermissiveness != nil {
		p.UpdatePermissiveness.Kind = Resolve(p.UpdatePermissiveness.Inherited, p.UpdatePermissiveness.Kind, tmpl.DefaultUpdatePermissiveness.Kind)
	}
	p.BasicStats = inheritStats(tmpl.BasicStats, p.BasicStats)

	return !reflect.DeepEqual(before, p)
}
