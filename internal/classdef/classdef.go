// Package classdef loads player class definitions from YAML. A definition
// is checked against an embedded JSON schema before it is decoded, then
// turned into a class draft the registry can create.
//
// In a definition with a parent, every field left out is inherited from the
// parent and every field given overrides the parent's value.
package classdef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/player/pkg/types"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("classdef.schema.json", schemaJSON)

// Definition is the file form of a PlayerClass.
type Definition struct {
	Mint                 string           `yaml:"mint"`
	Metadata             string           `yaml:"metadata"`
	Edition              string           `yaml:"edition"`
	Namespace            string           `yaml:"namespace"`
	Parent               *ParentRef       `yaml:"parent"`
	Indexed              bool             `yaml:"indexed"`
	StatsURI             *string          `yaml:"stats_uri"`
	Category             *string          `yaml:"category"`
	UpdatePermissiveness *string          `yaml:"update_permissiveness"`
	Propagation          []PropagationDef `yaml:"propagation"`
	Stats                []StatDef        `yaml:"stats"`
}

// ParentRef names the parent class by its mint and namespace.
type ParentRef struct {
	Mint      string `yaml:"mint"`
	Namespace string `yaml:"namespace"`
}

// PropagationDef is one propagation entry.
type PropagationDef struct {
	Domain      string `yaml:"domain"`
	Overridable bool   `yaml:"overridable"`
}

// StatDef defines one typed stat. Value is an index or a value name for an
// enum, a number for an integer, a boolean or a string.
type StatDef struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Values []string `yaml:"values,omitempty"`
	Min    *int64   `yaml:"min,omitempty"`
	Max    *int64   `yaml:"max,omitempty"`
	Value  any      `yaml:"value,omitempty"`
}

// Load reads and parses the definition at path.
func Load(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse validates raw against the schema and decodes it.
func Parse(raw []byte) (*Definition, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %v: %w", err, types.ErrInvalidData)
	}
	// The validator works on JSON values; YAML maps and ints are converted
	// by a round trip.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting yaml: %v: %w", err, types.ErrInvalidData)
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("converting yaml: %v: %w", err, types.ErrInvalidData)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidData)
	}

	var d Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding definition: %v: %w", err, types.ErrInvalidData)
	}
	return &d, nil
}

// ParseStat decodes a single stat in the form used under stats. Unknown
// fields are rejected.
func ParseStat(raw []byte) (*StatDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var s StatDef
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing stat: %v: %w", err, types.ErrInvalidData)
	}
	if s.Name == "" || s.Kind == "" {
		return nil, fmt.Errorf("stat needs a name and a kind: %w", types.ErrInvalidData)
	}
	return &s, nil
}

// Draft builds the class the definition describes. keys resolves the parent
// reference.
func (d *Definition) Draft(keys types.KeyDeriver) (*types.PlayerClass, error) {
	c := &types.PlayerClass{Indexed: d.Indexed}
	var err error
	if c.Mint, err = types.ParseID(d.Mint); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if c.Namespace, err = types.ParseID(d.Namespace); err != nil {
		return nil, fmt.Errorf("namespace: %w", err)
	}
	if c.Metadata, err = optionalID(d.Metadata); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if c.Edition, err = optionalID(d.Edition); err != nil {
		return nil, fmt.Errorf("edition: %w", err)
	}

	// A root owns every field. A child inherits what it leaves out and
	// overrides what it gives, so a given field can later be reset.
	absent, given := types.NotInherited, types.NotInherited
	if d.Parent != nil {
		mint, err := types.ParseID(d.Parent.Mint)
		if err != nil {
			return nil, fmt.Errorf("parent mint: %w", err)
		}
		ns, err := types.ParseID(d.Parent.Namespace)
		if err != nil {
			return nil, fmt.Errorf("parent namespace: %w", err)
		}
		parent := keys.ClassKey(mint, ns)
		c.Parent = &parent
		absent, given = types.Inherited, types.Overridden
	}

	c.StartingStatsURI.Inherited = absent
	if d.StatsURI != nil {
		c.StartingStatsURI = types.StatsURI{URI: *d.StatsURI, Inherited: given}
	}
	c.DefaultCategory.Inherited = absent
	if d.Category != nil {
		category, err := types.NormalizeLabel(*d.Category)
		if err != nil {
			return nil, fmt.Errorf("category: %w", err)
		}
		c.DefaultCategory = types.PlayerCategory{Category: category, Inherited: given}
	}
	c.DefaultUpdatePermissiveness.Inherited = absent
	if d.UpdatePermissiveness != nil {
		var kind types.PermissivenessKind
		if err := kind.UnmarshalText([]byte(*d.UpdatePermissiveness)); err != nil {
			return nil, err
		}
		c.DefaultUpdatePermissiveness = types.UpdatePermissiveness{Kind: kind, Inherited: given}
	}

	for _, p := range d.Propagation {
		var domain types.FieldDomain
		if err := domain.UnmarshalText([]byte(p.Domain)); err != nil {
			return nil, err
		}
		c.ChildUpdatePropagationPermissiveness = append(c.ChildUpdatePropagationPermissiveness,
			types.ChildUpdatePropagationPermissiveness{Domain: domain, Overridable: p.Overridable})
	}

	for _, s := range d.Stats {
		t, err := s.Type()
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", s.Name, err)
		}
		c.BasicStats = append(c.BasicStats, types.BasicStat{Name: s.Name, Type: t, Inherited: given})
	}
	return c, nil
}

func optionalID(s string) (types.ID, error) {
	if s == "" {
		return types.ID{}, nil
	}
	return types.ParseID(s)
}

// Type returns the stat's definition with its starting value. A stat
// without a value starts at the zero value of its kind, or at the lower
// bound of an integer.
func (s StatDef) Type() (types.BasicStatType, error) {
	var kind types.StatKind
	if err := kind.UnmarshalText([]byte(s.Kind)); err != nil {
		return types.BasicStatType{}, err
	}
	t := types.BasicStatType{Kind: kind, Values: s.Values, Min: s.Min, Max: s.Max}
	if s.Value == nil {
		t.Value = types.StatValue{Kind: kind}
		if kind == types.StatInteger && s.Min != nil {
			t.Value.Int = *s.Min
		}
		return t, t.ValidateDefinition()
	}
	v, err := convertValue(t, s.Value)
	if err != nil {
		return types.BasicStatType{}, err
	}
	t.Value = v
	return t, t.ValidateDefinition()
}

func convertValue(t types.BasicStatType, raw any) (types.StatValue, error) {
	switch v := raw.(type) {
	case string:
		return ParseValue(t, v)
	case int:
		if t.Kind == types.StatEnum || t.Kind == types.StatInteger {
			return types.StatValue{Kind: t.Kind, Int: int64(v)}, nil
		}
	case bool:
		if t.Kind == types.StatBool {
			return types.BoolValue(v), nil
		}
	}
	return types.StatValue{}, fmt.Errorf("value %v for %s stat: %w", raw, t.Kind, types.ErrStatKindMismatch)
}

// ParseValue reads a command-line or file value for a stat of type t. Enum
// values may be given by name or by index.
func ParseValue(t types.BasicStatType, raw string) (types.StatValue, error) {
	switch t.Kind {
	case types.StatEnum:
		for i, name := range t.Values {
			if name == raw {
				return types.EnumValue(int64(i)), nil
			}
		}
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.StatValue{}, fmt.Errorf("enum value %q: %w", raw, types.ErrEnumOutOfRange)
		}
		return types.EnumValue(i), nil
	case types.StatInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return types.StatValue{}, fmt.Errorf("integer value %q: %w", raw, types.ErrStatKindMismatch)
		}
		return types.IntegerValue(i), nil
	case types.StatBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return types.StatValue{}, fmt.Errorf("bool value %q: %w", raw, types.ErrStatKindMismatch)
		}
		return types.BoolValue(b), nil
	case types.StatText:
		return types.TextValue(raw), nil
	default:
		return types.StatValue{}, types.ErrInvalidStatType
	}
}
