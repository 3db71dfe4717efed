package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// childOf returns a class inheriting every field from the class stored
// under parentKey.
func childOf(parentKey Key, mint byte) *PlayerClass {
	return &PlayerClass{
		Mint:                        testID(mint),
		Namespace:                   testID(9),
		StartingStatsURI:            StatsURI{Inherited: Inherited},
		DefaultCategory:             PlayerCategory{Inherited: Inherited},
		DefaultUpdatePermissiveness: UpdatePermissiveness{Inherited: Inherited},
		Parent:                      &parentKey,
	}
}

func TestPlayerClassValidate(t *testing.T) {
	emptyKey := Key("")
	tests := []struct {
		name    string
		mutate  func(c *PlayerClass)
		wantErr error
	}{
		{name: "root class", mutate: func(*PlayerClass) {}},
		{name: "zero mint", mutate: func(c *PlayerClass) { c.Mint = ID{} }, wantErr: ErrInvalidID},
		{name: "root with inherited uri", mutate: func(c *PlayerClass) { c.StartingStatsURI.Inherited = Inherited }, wantErr: ErrNoTemplate},
		{name: "root with inherited stat", mutate: func(c *PlayerClass) { c.BasicStats[0].Inherited = Inherited }, wantErr: ErrNoTemplate},
		{name: "empty parent key", mutate: func(c *PlayerClass) { c.Parent = &emptyKey }, wantErr: ErrInvalidID},
		{name: "duplicate domains", mutate: func(c *PlayerClass) {
			c.ChildUpdatePropagationPermissiveness = PropagationPolicies{locked(DomainURI), locked(DomainURI)}
		}, wantErr: ErrDuplicateDomain},
		{name: "bad policy", mutate: func(c *PlayerClass) { c.DefaultUpdatePermissiveness.Kind = 7 }, wantErr: ErrInvalidPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClass()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.NoError(t, childOf("parent", 2).Validate(), "child may inherit")
}

func TestRootClassOwnsItsFields(t *testing.T) {
	c := testClass()
	require.NoError(t, c.SetStatsURI(nil, "ipfs://root-v2"))
	assert.Equal(t, NotInherited, c.StartingStatsURI.Inherited)
	require.NoError(t, c.SetStat(nil, "strength", IntegerValue(10)))

	assert.ErrorIs(t, c.ResetStatsURI(nil), ErrNotInheritedTerminal)
	assert.ErrorIs(t, c.ResetStat(nil, "strength"), ErrNotInheritedTerminal)
}

func TestPropagateClass(t *testing.T) {
	parent := testClass()
	child := childOf("parent", 2)

	assert.True(t, PropagateClass(parent, child))
	assert.Equal(t, parent.StartingStatsURI.URI, child.StartingStatsURI.URI)
	assert.Equal(t, "warrior", child.DefaultCategory.Category)
	assert.Equal(t, TokenHolderCanUpdate, child.DefaultUpdatePermissiveness.Kind)
	require.Len(t, child.BasicStats, 2)
	assert.Equal(t, Inherited, child.BasicStats[0].Inherited)
	assert.False(t, PropagateClass(parent, child))

	require.NoError(t, child.SetCategory(parent, "rogue"))
	parent.DefaultCategory.Category = "mage"
	PropagateClass(parent, child)
	assert.Equal(t, PlayerCategory{Category: "rogue", Inherited: Overridden}, child.DefaultCategory)

	require.NoError(t, child.ResetCategory(parent))
	assert.Equal(t, PlayerCategory{Category: "mage", Inherited: Inherited}, child.DefaultCategory)
}

func TestMultiLevelEffective(t *testing.T) {
	root := testClass()
	mid := childOf("root", 2)
	leaf := childOf("mid", 3)

	root.StartingStatsURI.URI = "ipfs://root-v2"
	midEff := mid.Effective(root)
	leafEff := leaf.Effective(midEff)
	assert.Equal(t, "ipfs://root-v2", leafEff.StartingStatsURI.URI)

	require.NoError(t, mid.SetStatsURI(root, "ipfs://mid"))
	leafEff = leaf.Effective(mid.Effective(root))
	assert.Equal(t, "ipfs://mid", leafEff.StartingStatsURI.URI)

	p, err := NewPlayer("leaf", leafEff, PlayerIdentity{Mint: testID(4)})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://mid", p.StatsURI.URI)
	assert.Len(t, p.BasicStats, 2)
}

func TestClassSetPropagation(t *testing.T) {
	parent := testClass(locked(DomainChildUpdatePropagationPermissiveness))
	child := childOf("parent", 2)

	err := child.SetPropagation(parent, PropagationPolicies{locked(DomainURI)})
	assert.ErrorIs(t, err, ErrNotOverridable)
	assert.Nil(t, child.ChildUpdatePropagationPermissiveness)

	open := testClass(locked(DomainUsages))
	require.NoError(t, child.SetPropagation(open, PropagationPolicies{locked(DomainURI)}))
	eff := child.Effective(open)
	assert.False(t, eff.ChildUpdatePropagationPermissiveness.Overridable(DomainURI))
	assert.False(t, eff.ChildUpdatePropagationPermissiveness.Overridable(DomainUsages), "parent entry carries down")
	assert.Len(t, child.ChildUpdatePropagationPermissiveness, 1, "stored entries stay the child's own")

	assert.ErrorIs(t, child.SetPropagation(open, PropagationPolicies{{Domain: 40}}), ErrInvalidDomain)
}

func TestEffectivePolicies(t *testing.T) {
	parent := PropagationPolicies{locked(DomainURI), {Domain: DomainUsages, Overridable: true}}
	child := PropagationPolicies{locked(DomainUsages), locked(DomainComponents)}

	got := EffectivePolicies(parent, child)
	assert.Equal(t, PropagationPolicies{locked(DomainURI), locked(DomainUsages), locked(DomainComponents)}, got)
	assert.True(t, parent[1].Overridable, "parent entries are not modified")
}

func TestClassStatLockedByParent(t *testing.T) {
	parent := testClass(locked(DomainUsages))
	child := childOf("parent", 2)
	PropagateClass(parent, child)
	before := child.Clone()

	assert.ErrorIs(t, child.SetStat(parent, "strength", IntegerValue(1)), ErrNotOverridable)
	assert.ErrorIs(t, child.DefineStat(parent, "strength", IntegerStat(nil, nil, 1)), ErrNotOverridable)
	assert.Equal(t, before, child)

	require.NoError(t, child.DefineStat(parent, "luck", BoolStat(true)))
	s, err := child.BasicStats.Get("luck")
	require.NoError(t, err)
	assert.Equal(t, NotInherited, s.Inherited)
}

func TestClassDefineStatOverrides(t *testing.T) {
	parent := testClass()
	child := childOf("parent", 2)
	PropagateClass(parent, child)

	require.NoError(t, child.DefineStat(parent, "strength", IntegerStat(Bound(0), Bound(100), 50)))
	s, err := child.BasicStats.Get("strength")
	require.NoError(t, err)
	assert.Equal(t, Overridden, s.Inherited)
	assert.Equal(t, int64(100), *s.Type.Max)

	assert.ErrorIs(t, child.DefineStat(parent, "strength", IntegerStat(Bound(0), Bound(1), 50)), ErrIntegerOutOfRange)
}
