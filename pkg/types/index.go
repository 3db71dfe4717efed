package types

import (
	"context"
	"slices"
)

// MaxNamespaces bounds the namespaces a class mint is discoverable under.
const MaxNamespaces = 10

// PlayerClassIndex lists the namespaces a class mint is registered under.
type PlayerClassIndex struct {
	Namespaces []ID `json:"namespaces"`
}

// Contains reports whether ns is registered.
func (x *PlayerClassIndex) Contains(ns ID) bool {
	return slices.Contains(x.Namespaces, ns)
}

// Register appends ns unless it is already present. A full index returns
// ErrIndexFull and is left unchanged.
func (x *PlayerClassIndex) Register(ns ID) error {
	if ns.IsZero() {
		return ErrInvalidID
	}
	if x.Contains(ns) {
		return nil
	}
	if len(x.Namespaces) >= MaxNamespaces {
		return ErrIndexFull
	}
	x.Namespaces = append(slices.Clone(x.Namespaces), ns)
	return nil
}

// Unregister removes ns. Removing a namespace that is not registered is a
// successful no-op.
func (x *PlayerClassIndex) Unregister(ns ID) {
	i := slices.Index(x.Namespaces, ns)
	if i < 0 {
		return
	}
	x.Namespaces = slices.Delete(slices.Clone(x.Namespaces), i, i+1)
}

// Validate checks the bound and rejects duplicates.
func (x *PlayerClassIndex) Validate() error {
	if len(x.Namespaces) > MaxNamespaces {
		return ErrIndexFull
	}
	seen := make(map[ID]bool, len(x.Namespaces))
	for _, ns := range x.Namespaces {
		if ns.IsZero() || seen[ns] {
			return ErrInvalidData
		}
		seen[ns] = true
	}
	return nil
}

// PlayerClassNamespaceWhitelist grants one namespace permission to operate
// on a class without holding its token. There is one record per
// (class mint, namespace).
type PlayerClassNamespaceWhitelist struct {
	Namespace ID `json:"namespace"`
}

// NamespaceAccess carries the facts CanCreateUnderNamespace decides on.
type NamespaceAccess struct {
	// Whitelisted reports whether a whitelist record exists for the
	// (namespace, class) pair.
	Whitelisted bool
}

// CanCreateUnderNamespace reports whether actor may create or register
// under namespace for the class minted as classMint: the actor signs for the
// namespace, or holds the class token, or the namespace is whitelisted.
func CanCreateUnderNamespace(ctx context.Context, oracle TokenOracle, actor, namespace, classMint ID, access NamespaceAccess) (bool, error) {
	if actor == namespace {
		return true, nil
	}
	if access.Whitelisted {
		return true, nil
	}
	return oracle.HoldsToken(ctx, actor, classMint)
}
