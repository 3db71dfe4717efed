package types

import "context"

// testID returns an identifier whose first byte is b.
func testID(b byte) ID {
	var id ID
	id[0] = b
	return id
}

// holdings is an in-memory TokenOracle keyed by (actor, mint).
type holdings map[[2]ID]bool

func (h holdings) HoldsToken(_ context.Context, actor, mint ID) (bool, error) {
	return h[[2]ID{actor, mint}], nil
}

// testClass returns a root class with two stats and the given propagation
// entries.
func testClass(policies ...ChildUpdatePropagationPermissiveness) *PlayerClass {
	return &PlayerClass{
		Mint:                                 testID(1),
		Namespace:                            testID(9),
		StartingStatsURI:                     StatsURI{URI: "https://example.com/stats.json"},
		DefaultCategory:                      PlayerCategory{Category: "warrior"},
		DefaultUpdatePermissiveness:          UpdatePermissiveness{Kind: TokenHolderCanUpdate},
		ChildUpdatePropagationPermissiveness: policies,
		BasicStats: Stats{
			{Name: "strength", Type: IntegerStat(Bound(0), Bound(10), 5)},
			{Name: "rank", Type: EnumStat(0, "A", "B", "C")},
		},
	}
}

func locked(d FieldDomain) ChildUpdatePropagationPermissiveness {
	return ChildUpdatePropagationPermissiveness{Domain: d, Overridable: false}
}
