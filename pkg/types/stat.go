package types

import (
	"fmt"
	"slices"
)

// StatKind selects the variant of a typed stat.
type StatKind uint8

const (
	StatEnum StatKind = iota
	StatInteger
	StatBool
	StatText
)

var statKindNames = map[StatKind]string{
	StatEnum:    "enum",
	StatInteger: "integer",
	StatBool:    "bool",
	StatText:    "text",
}

func (k StatKind) String() string {
	if name, ok := statKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("stat_kind(%d)", uint8(k))
}

// Valid reports whether k is a known variant.
func (k StatKind) Valid() bool {
	_, ok := statKindNames[k]
	return ok
}

// MarshalText encodes the kind by name.
func (k StatKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidStatType
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *StatKind) UnmarshalText(text []byte) error {
	for kind, name := range statKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("parse stat kind %q: %w", text, ErrInvalidStatType)
}

// StatValue is a candidate or stored value for a typed stat. Int carries
// the enum index for StatEnum and the number for StatInteger.
type StatValue struct {
	Kind StatKind `json:"kind" yaml:"kind"`
	Int  int64    `json:"int,omitempty" yaml:"int,omitempty"`
	Bool bool     `json:"bool,omitempty" yaml:"bool,omitempty"`
	Text string   `json:"text,omitempty" yaml:"text,omitempty"`
}

// EnumValue returns an enum candidate selecting values[index].
func EnumValue(index int64) StatValue { return StatValue{Kind: StatEnum, Int: index} }

// IntegerValue returns an integer candidate.
func IntegerValue(v int64) StatValue { return StatValue{Kind: StatInteger, Int: v} }

// BoolValue returns a boolean candidate.
func BoolValue(v bool) StatValue { return StatValue{Kind: StatBool, Bool: v} }

// TextValue returns a text candidate.
func TextValue(v string) StatValue { return StatValue{Kind: StatText, Text: v} }

func (v StatValue) String() string {
	switch v.Kind {
	case StatEnum:
		return fmt.Sprintf("enum[%d]", v.Int)
	case StatInteger:
		return fmt.Sprintf("%d", v.Int)
	case StatBool:
		return fmt.Sprintf("%t", v.Bool)
	case StatText:
		return fmt.Sprintf("%q", v.Text)
	default:
		return v.Kind.String()
	}
}

// BasicStatType is the definition of a typed stat plus its value. On a
// class the value is the starting value handed to instances; on a player it
// is the current value.
type BasicStatType struct {
	Kind   StatKind  `json:"kind" yaml:"kind"`
	Values []string  `json:"values,omitempty" yaml:"values,omitempty"`
	Min    *int64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *int64    `json:"max,omitempty" yaml:"max,omitempty"`
	Value  StatValue `json:"value" yaml:"value"`
}

// Bound returns a pointer to v for use as an integer bound.
func Bound(v int64) *int64 { return &v }

// EnumStat defines an enum stat starting at values[initial].
func EnumStat(initial int64, values ...string) BasicStatType {
	return BasicStatType{Kind: StatEnum, Values: values, Value: EnumValue(initial)}
}

// IntegerStat defines an integer stat. Nil bounds are open.
func IntegerStat(lo, hi *int64, initial int64) BasicStatType {
	return BasicStatType{Kind: StatInteger, Min: lo, Max: hi, Value: IntegerValue(initial)}
}

// BoolStat defines a boolean stat.
func BoolStat(initial bool) BasicStatType {
	return BasicStatType{Kind: StatBool, Value: BoolValue(initial)}
}

// TextStat defines a free-text stat.
func TextStat(initial string) BasicStatType {
	return BasicStatType{Kind: StatText, Value: TextValue(initial)}
}

// Validate checks a candidate against the stat's variant constraint. It
// never clamps and has no side effects.
func (t BasicStatType) Validate(candidate StatValue) error {
	if candidate.Kind != t.Kind {
		return ErrStatKindMismatch
	}
	switch t.Kind {
	case StatEnum:
		if candidate.Int < 0 || candidate.Int >= int64(len(t.Values)) {
			return ErrEnumOutOfRange
		}
	case StatInteger:
		if t.Min != nil && candidate.Int < *t.Min {
			return ErrIntegerOutOfRange
		}
		if t.Max != nil && candidate.Int > *t.Max {
			return ErrIntegerOutOfRange
		}
	case StatBool:
	case StatText:
		if _, err := normalizeBounded(candidate.Text, MaxStatTextBytes, ErrTextTooLong); err != nil {
			return err
		}
	default:
		return ErrInvalidStatType
	}
	return nil
}

// ValidateDefinition checks the definition itself and its current value.
func (t BasicStatType) ValidateDefinition() error {
	if !t.Kind.Valid() {
		return ErrInvalidStatType
	}
	if t.Kind != StatEnum && len(t.Values) > 0 {
		return fmt.Errorf("%s stat with enum values: %w", t.Kind, ErrInvalidStatType)
	}
	if t.Kind != StatInteger && (t.Min != nil || t.Max != nil) {
		return fmt.Errorf("%s stat with integer bounds: %w", t.Kind, ErrInvalidStatType)
	}
	switch t.Kind {
	case StatEnum:
		if len(t.Values) == 0 || len(t.Values) > MaxEnumValues {
			return fmt.Errorf("enum with %d values: %w", len(t.Values), ErrInvalidStatType)
		}
		for _, v := range t.Values {
			if v == "" || len(v) > MaxEnumValueBytes {
				return fmt.Errorf("enum value %q: %w", v, ErrInvalidStatType)
			}
		}
	case StatInteger:
		if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
			return fmt.Errorf("integer bounds %d > %d: %w", *t.Min, *t.Max, ErrInvalidStatType)
		}
	}
	return t.Validate(t.Value)
}

// Clone returns a deep copy.
func (t BasicStatType) Clone() BasicStatType {
	c := t
	c.Values = slices.Clone(t.Values)
	if t.Min != nil {
		c.Min = Bound(*t.Min)
	}
	if t.Max != nil {
		c.Max = Bound(*t.Max)
	}
	return c
}

// withValue returns a copy holding v, normalized for storage.
func (t BasicStatType) withValue(v StatValue) BasicStatType {
	c := t.Clone()
	if v.Kind == StatText {
		v.Text, _ = normalizeBounded(v.Text, MaxStatTextBytes, ErrTextTooLong)
	}
	c.Value = v
	return c
}

// BasicStat is a named typed stat with its inheritance state.
type BasicStat struct {
	Name      string           `json:"name" yaml:"name"`
	Type      BasicStatType    `json:"type" yaml:"type"`
	Inherited InheritanceState `json:"inherited" yaml:"inherited"`
}

// Stats is an ordered collection of stats with unique names.
type Stats []BasicStat

// Index returns the position of the named stat, or -1.
func (s Stats) Index(name string) int {
	return slices.IndexFunc(s, func(b BasicStat) bool { return b.Name == name })
}

// Get returns the named stat.
func (s Stats) Get(name string) (BasicStat, error) {
	i := s.Index(name)
	if i < 0 {
		return BasicStat{}, fmt.Errorf("stat %q: %w", name, ErrStatNotFound)
	}
	return s[i], nil
}

// Validate checks names, uniqueness, states and every definition.
func (s Stats) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, b := range s {
		if _, err := normalizeStatName(b.Name); err != nil {
			return fmt.Errorf("stat %q: %w", b.Name, err)
		}
		if seen[b.Name] {
			return fmt.Errorf("stat %q: %w", b.Name, ErrDuplicateStat)
		}
		seen[b.Name] = true
		if !b.Inherited.Valid() {
			return fmt.Errorf("stat %q: %w", b.Name, ErrInvalidState)
		}
		if err := b.Type.ValidateDefinition(); err != nil {
			return fmt.Errorf("stat %q: %w", b.Name, err)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	if s == nil {
		return nil
	}
	out := make(Stats, len(s))
	for i, b := range s {
		out[i] = BasicStat{Name: b.Name, Type: b.Type.Clone(), Inherited: b.Inherited}
	}
	return out
}

// inheritStats merges a template's effective stats into own. Template stats
// come first in template order: inherited (or missing) entries take the
// template's definition, locally owned entries are kept as they are. Own
// stats the template does not define follow in their original order, except
// inherited ones, whose source no longer exists.
func inheritStats(template, own Stats) Stats {
	out := make(Stats, 0, len(template)+len(own))
	for _, ts := range template {
		if i := own.Index(ts.Name); i >= 0 && own[i].Inherited != Inherited {
			out = append(out, BasicStat{Name: own[i].Name, Type: own[i].Type.Clone(), Inherited: own[i].Inherited})
			continue
		}
		out = append(out, BasicStat{Name: ts.Name, Type: ts.Type.Clone(), Inherited: Inherited})
	}
	for _, b := range own {
		if template.Index(b.Name) >= 0 || b.Inherited == Inherited {
			continue
		}
		out = append(out, BasicStat{Name: b.Name, Type: b.Type.Clone(), Inherited: b.Inherited})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
