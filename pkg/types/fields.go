package types

import "fmt"

// StatsURI is a stats document location with its inheritance state.
type StatsURI struct {
	URI       string           `json:"uri" yaml:"uri"`
	Inherited InheritanceState `json:"inherited" yaml:"inherited"`
}

// PlayerCategory is a category label with its inheritance state.
type PlayerCategory struct {
	Category  string           `json:"category" yaml:"category"`
	Inherited InheritanceState `json:"inherited" yaml:"inherited"`
}

// overrideState returns the state a local write moves a field to. Records
// without a template own every field.
func overrideState(state InheritanceState, tmpl *PlayerClass, d FieldDomain) (InheritanceState, error) {
	if tmpl == nil {
		if state != NotInherited {
			return state, ErrNoTemplate
		}
		return NotInherited, nil
	}
	next, err := beginOverride(state, tmpl.ChildUpdatePropagationPermissiveness.Overridable(d))
	if err != nil {
		return state, fmt.Errorf("%s: %w", d, err)
	}
	return next, nil
}

func resetState(state InheritanceState, tmpl *PlayerClass) error {
	if err := beginReset(state); err != nil {
		return err
	}
	if tmpl == nil {
		return ErrNoTemplate
	}
	return nil
}

func writeURI(f *StatsURI, tmpl *PlayerClass, uri string) error {
	uri, err := normalizeURI(uri)
	if err != nil {
		return err
	}
	state, err := overrideState(f.Inherited, tmpl, DomainURI)
	if err != nil {
		return err
	}
	f.URI, f.Inherited = uri, state
	return nil
}

func resetURI(f *StatsURI, tmpl *PlayerClass) error {
	if err := resetState(f.Inherited, tmpl); err != nil {
		return err
	}
	uri, err := normalizeURI(tmpl.StartingStatsURI.URI)
	if err != nil {
		return err
	}
	f.URI, f.Inherited = uri, Inherited
	return nil
}

func writeCategory(f *PlayerCategory, tmpl *PlayerClass, category string) error {
	category, err := NormalizeLabel(category)
	if err != nil {
		return err
	}
	state, err := overrideState(f.Inherited, tmpl, DomainClass)
	if err != nil {
		return err
	}
	f.Category, f.Inherited = category, state
	return nil
}

func resetCategory(f *PlayerCategory, tmpl *PlayerClass) error {
	if err := resetState(f.Inherited, tmpl); err != nil {
		return err
	}
	category, err := NormalizeLabel(tmpl.DefaultCategory.Category)
	if err != nil {
		return err
	}
	f.Category, f.Inherited = category, Inherited
	return nil
}

func writePolicy(f *UpdatePermissiveness, tmpl *PlayerClass, kind PermissivenessKind) error {
	if !kind.Valid() {
		return ErrInvalidPolicy
	}
	state, err := overrideState(f.Inherited, tmpl, DomainUpdatePermissiveness)
	if err != nil {
		return err
	}
	f.Kind, f.Inherited = kind, state
	return nil
}

func resetPolicy(f *UpdatePermissiveness, tmpl *PlayerClass) error {
	if err := resetState(f.Inherited, tmpl); err != nil {
		return err
	}
	kind := tmpl.DefaultUpdatePermissiveness.Kind
	if !kind.Valid() {
		return ErrInvalidPolicy
	}
	f.Kind, f.Inherited = kind, Inherited
	return nil
}

func writeStat(stats Stats, tmpl *PlayerClass, name string, v StatValue) error {
	i := stats.Index(name)
	if i < 0 {
		return fmt.Errorf("stat %q: %w", name, ErrStatNotFound)
	}
	state, err := overrideState(stats[i].Inherited, tmpl, DomainUsages)
	if err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	if err := stats[i].Type.Validate(v); err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	stats[i].Type = stats[i].Type.withValue(v)
	stats[i].Inherited = state
	return nil
}

func resetStat(stats Stats, tmpl *PlayerClass, name string) error {
	i := stats.Index(name)
	if i < 0 {
		return fmt.Errorf("stat %q: %w", name, ErrStatNotFound)
	}
	if err := resetState(stats[i].Inherited, tmpl); err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	ts, err := tmpl.BasicStats.Get(name)
	if err != nil {
		return err
	}
	if err := ts.Type.ValidateDefinition(); err != nil {
		return fmt.Errorf("template stat %q: %w", name, err)
	}
	stats[i] = BasicStat{Name: name, Type: ts.Type.Clone(), Inherited: Inherited}
	return nil
}

// addStat appends a locally owned stat.
func addStat(stats Stats, name string, def BasicStatType) (Stats, error) {
	name, err := normalizeStatName(name)
	if err != nil {
		return nil, err
	}
	if stats.Index(name) >= 0 {
		return nil, fmt.Errorf("stat %q: %w", name, ErrDuplicateStat)
	}
	if err := def.ValidateDefinition(); err != nil {
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	return append(stats.Clone(), BasicStat{Name: name, Type: def.withValue(def.Value), Inherited: NotInherited}), nil
}

func removeStat(stats Stats, name string) (Stats, error) {
	i := stats.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("stat %q: %w", name, ErrStatNotFound)
	}
	if stats[i].Inherited != NotInherited {
		return nil, fmt.Errorf("stat %q: %w", name, ErrStatInherited)
	}
	out := stats.Clone()
	return append(out[:i], out[i+1:]...), nil
}
