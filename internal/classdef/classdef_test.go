package classdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/player/internal/keys"
	"github.com/mesh-intelligence/player/pkg/types"
)

var (
	mintHex  = strings.Repeat("01", 32)
	nsHex    = strings.Repeat("09", 32)
	childHex = strings.Repeat("03", 32)
	deriver  = keys.New(types.Program{ID: types.ID{7}})
)

const rootYAML = `
mint: %MINT%
namespace: %NS%
indexed: true
stats_uri: https://example.com/stats.json
category: warrior
update_permissiveness: player_class_holder
propagation:
  - domain: uri
    overridable: false
stats:
  - name: strength
    kind: integer
    min: 0
    max: 10
    value: 5
  - name: rank
    kind: enum
    values: [A, B, C]
    value: B
  - name: alive
    kind: bool
    value: true
  - name: title
    kind: text
`

// expand fills in quoted identifiers. Unquoted, an all-digit hex string
// would load as a number.
func expand(s string) []byte {
	q := func(s string) string { return `"` + s + `"` }
	r := strings.NewReplacer("%MINT%", q(mintHex), "%NS%", q(nsHex), "%CHILD%", q(childHex))
	return []byte(r.Replace(s))
}

func TestParseRoot(t *testing.T) {
	d, err := Parse(expand(rootYAML))
	require.NoError(t, err)

	c, err := d.Draft(deriver)
	require.NoError(t, err)
	assert.Nil(t, c.Parent)
	assert.True(t, c.Indexed)
	assert.Equal(t, types.StatsURI{URI: "https://example.com/stats.json"}, c.StartingStatsURI)
	assert.Equal(t, types.PlayerCategory{Category: "warrior"}, c.DefaultCategory)
	assert.Equal(t, types.UpdatePermissiveness{Kind: types.PlayerClassHolderCanUpdate}, c.DefaultUpdatePermissiveness)
	assert.Equal(t, types.PropagationPolicies{{Domain: types.DomainURI}}, c.ChildUpdatePropagationPermissiveness)

	require.Len(t, c.BasicStats, 4)
	assert.Equal(t, types.IntegerValue(5), c.BasicStats[0].Type.Value)
	assert.Equal(t, types.EnumValue(1), c.BasicStats[1].Type.Value)
	assert.Equal(t, types.BoolValue(true), c.BasicStats[2].Type.Value)
	assert.Equal(t, types.TextValue(""), c.BasicStats[3].Type.Value)
	assert.NoError(t, c.Validate())
}

func TestParseChild(t *testing.T) {
	d, err := Parse(expand(`
mint: %CHILD%
namespace: %NS%
parent:
  mint: %MINT%
  namespace: %NS%
category: rogue
`))
	require.NoError(t, err)

	c, err := d.Draft(deriver)
	require.NoError(t, err)
	require.NotNil(t, c.Parent)
	assert.Equal(t, deriver.ClassKey(types.MustParseID(mintHex), types.MustParseID(nsHex)), *c.Parent)
	assert.Equal(t, types.Inherited, c.StartingStatsURI.Inherited)
	assert.Equal(t, types.PlayerCategory{Category: "rogue", Inherited: types.Overridden}, c.DefaultCategory)
	assert.Equal(t, types.Inherited, c.DefaultUpdatePermissiveness.Inherited)
	assert.Empty(t, c.BasicStats)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "mint: [unclosed"},
		{name: "missing mint", yaml: "namespace: %NS%"},
		{name: "short mint", yaml: "mint: abcd\nnamespace: %NS%"},
		{name: "unknown field", yaml: "mint: %MINT%\nnamespace: %NS%\ncolor: red"},
		{name: "unknown policy", yaml: "mint: %MINT%\nnamespace: %NS%\nupdate_permissiveness: owner"},
		{name: "unknown domain", yaml: "mint: %MINT%\nnamespace: %NS%\npropagation: [{domain: items, overridable: true}]"},
		{name: "enum without values", yaml: "mint: %MINT%\nnamespace: %NS%\nstats: [{name: rank, kind: enum}]"},
		{name: "bounds on bool", yaml: "mint: %MINT%\nnamespace: %NS%\nstats: [{name: alive, kind: bool, min: 0}]"},
		{name: "fractional value", yaml: "mint: %MINT%\nnamespace: %NS%\nstats: [{name: hp, kind: integer, value: 1.5}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(expand(tt.yaml))
			assert.ErrorIs(t, err, types.ErrInvalidData)
		})
	}
}

func TestDraftRejects(t *testing.T) {
	tests := []struct {
		name    string
		stat    string
		wantErr error
	}{
		{name: "value out of bounds", stat: "{name: hp, kind: integer, min: 0, max: 10, value: 11}", wantErr: types.ErrIntegerOutOfRange},
		{name: "unknown enum name", stat: "{name: rank, kind: enum, values: [A], value: Z}", wantErr: types.ErrEnumOutOfRange},
		{name: "bool for integer", stat: "{name: hp, kind: integer, value: true}", wantErr: types.ErrStatKindMismatch},
		{name: "inverted bounds", stat: "{name: hp, kind: integer, min: 5, max: 1}", wantErr: types.ErrInvalidStatType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(expand("mint: %MINT%\nnamespace: %NS%\nstats: [" + tt.stat + "]"))
			require.NoError(t, err)
			_, err = d.Draft(deriver)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warrior.yaml")
	require.NoError(t, os.WriteFile(path, expand(rootYAML), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, mintHex, d.Mint)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseValue(t *testing.T) {
	enum := types.EnumStat(0, "A", "B", "C")

	tests := []struct {
		name    string
		typ     types.BasicStatType
		raw     string
		want    types.StatValue
		wantErr error
	}{
		{name: "enum by name", typ: enum, raw: "C", want: types.EnumValue(2)},
		{name: "enum by index", typ: enum, raw: "1", want: types.EnumValue(1)},
		{name: "enum unknown", typ: enum, raw: "Z", wantErr: types.ErrEnumOutOfRange},
		{name: "integer", typ: types.IntegerStat(nil, nil, 0), raw: "-12", want: types.IntegerValue(-12)},
		{name: "integer garbage", typ: types.IntegerStat(nil, nil, 0), raw: "ten", wantErr: types.ErrStatKindMismatch},
		{name: "bool", typ: types.BoolStat(false), raw: "true", want: types.BoolValue(true)},
		{name: "bool garbage", typ: types.BoolStat(false), raw: "yes please", wantErr: types.ErrStatKindMismatch},
		{name: "text", typ: types.TextStat(""), raw: "sir", want: types.TextValue("sir")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.typ, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStat(t *testing.T) {
	s, err := ParseStat([]byte("{name: rank, kind: enum, values: [A, B], value: B}"))
	require.NoError(t, err)
	typ, err := s.Type()
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue(1), typ.Value)

	for _, raw := range []string{"", "{kind: bool}", "{name: hp}", "{name: hp, kind: integer, colour: red}", "[1, 2]"} {
		_, err := ParseStat([]byte(raw))
		assert.ErrorIs(t, err, types.ErrInvalidData, raw)
	}
}
