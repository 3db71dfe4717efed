package types

import "fmt"

// InheritanceState records where a field's effective value comes from.
type InheritanceState uint8

const (
	// NotInherited: the record owns the value outright and no template is
	// ever consulted. Terminal.
	NotInherited InheritanceState = iota
	// Inherited: the effective value is the template's. Any stored value is
	// a cache refreshed by propagation.
	Inherited
	// Overridden: the record owns a locally set value that diverges from the
	// template until it is reset.
	Overridden
)

var inheritanceNames = map[InheritanceState]string{
	NotInherited: "not_inherited",
	Inherited:    "inherited",
	Overridden:   "overridden",
}

// Valid reports whether s is one of the three states.
func (s InheritanceState) Valid() bool {
	_, ok := inheritanceNames[s]
	return ok
}

func (s InheritanceState) String() string {
	if name, ok := inheritanceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("inheritance_state(%d)", uint8(s))
}

// MarshalText encodes the state by name.
func (s InheritanceState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidState
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *InheritanceState) UnmarshalText(text []byte) error {
	parsed, err := ParseInheritanceState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseInheritanceState decodes a state name.
func ParseInheritanceState(name string) (InheritanceState, error) {
	for s, n := range inheritanceNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("parse inheritance state %q: %w", name, ErrInvalidState)
}

// Resolve returns the effective value of a field given its state, the value
// the record stores, and the template's current value.
func Resolve[T any](state InheritanceState, own, template T) T {
	if state == Inherited {
		return template
	}
	return own
}

// beginOverride checks the transition taken by a local write. Inherited
// fields move to Overridden only when the domain is overridable; Overridden
// fields keep writing under the same rule; NotInherited fields are owned and
// always writable.
func beginOverride(state InheritanceState, overridable bool) (InheritanceState, error) {
	switch state {
	case NotInherited:
		return NotInherited, nil
	case Inherited, Overridden:
		if !overridable {
			return state, ErrNotOverridable
		}
		return Overridden, nil
	default:
		return state, ErrInvalidState
	}
}

// beginReset checks the transition taken by a reset to template.
func beginReset(state InheritanceState) error {
	switch state {
	case Inherited, Overridden:
		return nil
	case NotInherited:
		return ErrNotInheritedTerminal
	default:
		return ErrInvalidState
	}
}
