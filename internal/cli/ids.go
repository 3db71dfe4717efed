package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/player/pkg/types"
)

// parseID decodes a hex id named what for error messages.
func parseID(what, s string) (types.ID, error) {
	id, err := types.ParseID(s)
	if err != nil {
		return types.ID{}, fmt.Errorf("%s: %w", what, err)
	}
	return id, nil
}

// parseOptionalID decodes s, or returns the zero id for an empty string.
func parseOptionalID(what, s string) (types.ID, error) {
	if s == "" {
		return types.ID{}, nil
	}
	return parseID(what, s)
}

// splitAssign splits "name=value".
func splitAssign(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", usageErrorf("expected name=value, got %q", s)
	}
	return name, value, nil
}

// parsePropagation decodes "domain=true|false" pairs into policies.
func parsePropagation(pairs []string) (types.PropagationPolicies, error) {
	var out types.PropagationPolicies
	for _, pair := range pairs {
		name, value, err := splitAssign(pair)
		if err != nil {
			return nil, err
		}
		var d types.FieldDomain
		if err := d.UnmarshalText([]byte(name)); err != nil {
			return nil, err
		}
		overridable, err := strconv.ParseBool(value)
		if err != nil {
			return nil, usageErrorf("propagation %s: %q is not a boolean", name, value)
		}
		out = append(out, types.ChildUpdatePropagationPermissiveness{Domain: d, Overridable: overridable})
	}
	return out, nil
}
