package types

import (
	"fmt"
	"reflect"
)

// PlayerClass is the template players (and child classes) inherit from. It
// is created once per (namespace, mint). A class without a parent owns all
// of its fields; a child class inherits from its parent's effective values
// under the parent's propagation entries, exactly as a player inherits from
// its class.
type PlayerClass struct {
	Mint                                 ID                   `json:"mint"`
	Metadata                             ID                   `json:"metadata"`
	Edition                              ID                   `json:"edition"`
	StartingStatsURI                     StatsURI             `json:"starting_stats_uri"`
	DefaultCategory                      PlayerCategory       `json:"default_category"`
	Namespace                            ID                   `json:"namespace"`
	Indexed                              bool                 `json:"indexed"`
	DefaultUpdatePermissiveness          UpdatePermissiveness `json:"default_update_permissiveness"`
	ChildUpdatePropagationPermissiveness PropagationPolicies  `json:"child_update_propagation_permissiveness"`
	BasicStats                           Stats                `json:"basic_stats"`
	Parent                               *Key                 `json:"parent,omitempty"`
}

// Validate checks identifiers, byte limits, states and definitions. A root
// class may not mark any field as inherited.
func (c *PlayerClass) Validate() error {
	if c.Mint.IsZero() {
		return fmt.Errorf("class mint: %w", ErrInvalidID)
	}
	if len(c.StartingStatsURI.URI) > MaxURIBytes {
		return ErrURITooLong
	}
	if len(c.DefaultCategory.Category) > MaxLabelBytes {
		return fmt.Errorf("default category: %w", ErrLabelTooLong)
	}
	for _, s := range []InheritanceState{c.StartingStatsURI.Inherited, c.DefaultCategory.Inherited} {
		if !s.Valid() {
			return ErrInvalidState
		}
	}
	if err := c.DefaultUpdatePermissiveness.Validate(); err != nil {
		return err
	}
	if err := c.ChildUpdatePropagationPermissiveness.Validate(); err != nil {
		return err
	}
	if err := c.BasicStats.Validate(); err != nil {
		return err
	}
	if c.Parent == nil {
		if c.StartingStatsURI.Inherited != NotInherited ||
			c.DefaultCategory.Inherited != NotInherited ||
			c.DefaultUpdatePermissiveness.Inherited != NotInherited {
			return ErrNoTemplate
		}
		for _, b := range c.BasicStats {
			if b.Inherited != NotInherited {
				return fmt.Errorf("stat %q: %w", b.Name, ErrNoTemplate)
			}
		}
	} else if *c.Parent == "" {
		return fmt.Errorf("class parent: %w", ErrInvalidID)
	}
	return nil
}

// Clone returns a deep copy.
func (c *PlayerClass) Clone() *PlayerClass {
	out := *c
	out.ChildUpdatePropagationPermissiveness = c.ChildUpdatePropagationPermissiveness.Clone()
	out.BasicStats = c.BasicStats.Clone()
	if c.Parent != nil {
		parent := *c.Parent
		out.Parent = &parent
	}
	return &out
}

// Effective returns the class as observed after resolving every field
// against parent, the parent's effective class. Its propagation entries are
// the parent's overlaid with the class's own. A nil parent means the class
// is a root and is returned as a copy.
func (c *PlayerClass) Effective(parent *PlayerClass) *PlayerClass {
	out := c.Clone()
	if parent != nil {
		PropagateClass(parent, out)
		out.ChildUpdatePropagationPermissiveness = EffectivePolicies(
			parent.ChildUpdatePropagationPermissiveness, c.ChildUpdatePropagationPermissiveness)
	}
	return out
}

// CheckPolicies fails when a child class sets its own propagation entries
// although its parent locks that domain.
func (c *PlayerClass) CheckPolicies(parent *PlayerClass) error {
	if parent == nil || len(c.ChildUpdatePropagationPermissiveness) == 0 {
		return nil
	}
	if !parent.ChildUpdatePropagationPermissiveness.Overridable(DomainChildUpdatePropagationPermissiveness) {
		return fmt.Errorf("%s: %w", DomainChildUpdatePropagationPermissiveness, ErrNotOverridable)
	}
	return nil
}

// CheckOverrides fails when a child class owns a field its parent provides
// in a domain the parent locks. Stats the parent does not define are the
// class's own and are not checked.
func (c *PlayerClass) CheckOverrides(parent *PlayerClass) error {
	if parent == nil {
		return nil
	}
	locked := func(d FieldDomain) bool {
		return !parent.ChildUpdatePropagationPermissiveness.Overridable(d)
	}
	owned := []struct {
		domain FieldDomain
		state  InheritanceState
	}{
		{DomainURI, c.StartingStatsURI.Inherited},
		{DomainClass, c.DefaultCategory.Inherited},
		{DomainUpdatePermissiveness, c.DefaultUpdatePermissiveness.Inherited},
	}
	for _, f := range owned {
		if f.state != Inherited && locked(f.domain) {
			return fmt.Errorf("%s: %w", f.domain, ErrNotOverridable)
		}
	}
	if !locked(DomainUsages) {
		return nil
	}
	for _, b := range c.BasicStats {
		if b.Inherited != Inherited && parent.BasicStats.Index(b.Name) >= 0 {
			return fmt.Errorf("stat %q: %s: %w", b.Name, DomainUsages, ErrNotOverridable)
		}
	}
	return nil
}

// OwnLocalStats marks overridden stats the parent does not define as owned
// outright. Without a template they could never be reset.
func (c *PlayerClass) OwnLocalStats(parent *PlayerClass) {
	if parent == nil {
		return
	}
	for i, b := range c.BasicStats {
		if b.Inherited == Overridden && parent.BasicStats.Index(b.Name) < 0 {
			c.BasicStats[i].Inherited = NotInherited
		}
	}
}

// SetStatsURI writes the starting stats URI.
func (c *PlayerClass) SetStatsURI(parent *PlayerClass, uri string) error {
	return writeURI(&c.StartingStatsURI, parent, uri)
}

// SetCategory writes the default category.
func (c *PlayerClass) SetCategory(parent *PlayerClass, category string) error {
	return writeCategory(&c.DefaultCategory, parent, category)
}

// SetUpdatePermissiveness writes the default update policy.
func (c *PlayerClass) SetUpdatePermissiveness(parent *PlayerClass, kind PermissivenessKind) error {
	return writePolicy(&c.DefaultUpdatePermissiveness, parent, kind)
}

// SetPropagation replaces the class's own propagation entries.
func (c *PlayerClass) SetPropagation(parent *PlayerClass, policies PropagationPolicies) error {
	if err := policies.Validate(); err != nil {
		return err
	}
	next := *c
	next.ChildUpdatePropagationPermissiveness = policies
	if err := next.CheckPolicies(parent); err != nil {
		return err
	}
	c.ChildUpdatePropagationPermissiveness = policies.Clone()
	return nil
}

// SetStat writes the value of an existing stat.
func (c *PlayerClass) SetStat(parent *PlayerClass, name string, v StatValue) error {
	return writeStat(c.BasicStats, parent, name, v)
}

// DefineStat adds a stat, or replaces the definition of an existing one.
// Replacing an inherited definition overrides it under the Usages domain.
func (c *PlayerClass) DefineStat(parent *PlayerClass, name string, def BasicStatType) error {
	i := c.BasicStats.Index(name)
	if i < 0 {
		stats, err := addStat(c.BasicStats, name, def)
		if err != nil {
			return err
		}
		c.BasicStats = stats
		return nil
	}
	state, err := overrideState(c.BasicStats[i].Inherited, parent, DomainUsages)
	if err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	if err := def.ValidateDefinition(); err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	c.BasicStats[i] = BasicStat{Name: name, Type: def.withValue(def.Value), Inherited: state}
	return nil
}

// RemoveStat drops a stat the class owns.
func (c *PlayerClass) RemoveStat(name string) error {
	stats, err := removeStat(c.BasicStats, name)
	if err != nil {
		return err
	}
	c.BasicStats = stats
	return nil
}

// ResetStatsURI returns the stats URI to inheriting from parent.
func (c *PlayerClass) ResetStatsURI(parent *PlayerClass) error {
	return resetURI(&c.StartingStatsURI, parent)
}

// ResetCategory returns the category to inheriting from parent.
func (c *PlayerClass) ResetCategory(parent *PlayerClass) error {
	return resetCategory(&c.DefaultCategory, parent)
}

// ResetUpdatePermissiveness returns the policy to inheriting from parent.
func (c *PlayerClass) ResetUpdatePermissiveness(parent *PlayerClass) error {
	return resetPolicy(&c.DefaultUpdatePermissiveness, parent)
}

// ResetStat returns a stat to inheriting from parent.
func (c *PlayerClass) ResetStat(parent *PlayerClass, name string) error {
	return resetStat(c.BasicStats, parent, name)
}

// PropagateClass refreshes every inherited field of child from parent's
// effective values and reports whether anything changed. Running it twice
// yields the same result as running it once.
func PropagateClass(parent, child *PlayerClass) bool {
	before := child.Clone()

	child.StartingStatsURI.URI = Resolve(child.StartingStatsURI.Inherited, child.StartingStatsURI.URI, parent.StartingStatsURI.URI)
	child.DefaultCategory.Category = Resolve(child.DefaultCategory.Inherited, child.DefaultCategory.Category, parent.DefaultCategory.Category)
	child.DefaultUpdatePermissiveness.Kind = Resolve(child.DefaultUpdatePermissiveness.Inherited, child.DefaultUpdatePermissiveness.Kind, parent.DefaultUpdatePermissiveness.Kind)
	child.BasicStats = inheritStats(parent.BasicStats, child.BasicStats)

	return !reflect.DeepEqual(before, child)
}

// EffectivePolicies returns parent's effective entries overlaid with the
// child's own. Callers use the result as the child's effective entries.
func EffectivePolicies(parent, child PropagationPolicies) PropagationPolicies {
	out := parent.Clone()
	for _, e := range child {
		replaced := false
		for i := range out {
			if out[i].Domain == e.Domain {
				out[i] = e
				replaced = true
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}
