package types

import "fmt"

// FieldDomain names a group of overridable fields. Each domain has at most
// one ChildUpdatePropagationPermissiveness entry on a class.
type FieldDomain uint8

const (
	// DomainClass covers the category.
	DomainClass FieldDomain = iota
	// DomainUsages covers basic stats.
	DomainUsages
	// DomainComponents covers equipped items.
	DomainComponents
	// DomainUpdatePermissiveness covers the update policy.
	DomainUpdatePermissiveness
	// DomainChildUpdatePropagationPermissiveness covers a child class's own
	// propagation entries.
	DomainChildUpdatePropagationPermissiveness
	// DomainURI covers the stats URI.
	DomainURI
)

var domainNames = map[FieldDomain]string{
	DomainClass:                                "class",
	DomainUsages:                               "usages",
	DomainComponents:                           "components",
	DomainUpdatePermissiveness:                 "update_permissiveness",
	DomainChildUpdatePropagationPermissiveness: "child_update_propagation_permissiveness",
	DomainURI:                                  "uri",
}

// Valid reports whether d is a known domain.
func (d FieldDomain) Valid() bool {
	_, ok := domainNames[d]
	return ok
}

func (d FieldDomain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("field_domain(%d)", uint8(d))
}

// MarshalText encodes the domain by name.
func (d FieldDomain) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalidDomain
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a domain name.
func (d *FieldDomain) UnmarshalText(text []byte) error {
	for domain, name := range domainNames {
		if name == string(text) {
			*d = domain
			return nil
		}
	}
	return fmt.Errorf("parse field domain %q: %w", text, ErrInvalidDomain)
}

// ChildUpdatePropagationPermissiveness states whether records that inherit a
// domain from this class may escape inheritance for it.
type ChildUpdatePropagationPermissiveness struct {
	Domain      FieldDomain `json:"domain" yaml:"domain"`
	Overridable bool        `json:"overridable" yaml:"overridable"`
}

// PropagationPolicies is a class's list of per-domain entries.
type PropagationPolicies []ChildUpdatePropagationPermissiveness

// Overridable reports whether dependents may override the domain. A domain
// without an entry places no restriction on dependents.
func (p PropagationPolicies) Overridable(d FieldDomain) bool {
	for _, e := range p {
		if e.Domain == d {
			return e.Overridable
		}
	}
	return true
}

// Validate rejects unknown and duplicate domains.
func (p PropagationPolicies) Validate() error {
	seen := make(map[FieldDomain]bool, len(p))
	for _, e := range p {
		if !e.Domain.Valid() {
			return ErrInvalidDomain
		}
		if seen[e.Domain] {
			return fmt.Errorf("domain %s: %w", e.Domain, ErrDuplicateDomain)
		}
		seen[e.Domain] = true
	}
	return nil
}

// Clone returns a copy.
func (p PropagationPolicies) Clone() PropagationPolicies {
	if p == nil {
		return nil
	}
	return append(PropagationPolicies(nil), p...)
}
