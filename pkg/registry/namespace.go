package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/player/internal/record"
	"github.com/mesh-intelligence/player/pkg/types"
)

// CanCreateUnderNamespace reports whether actor may create or register
// under namespace for the class minted as classMint.
func (r *Registry) CanCreateUnderNamespace(ctx context.Context, actor, namespace, classMint types.ID) (bool, error) {
	whitelisted, err := r.whitelisted(ctx, classMint, namespace)
	if err != nil {
		return false, err
	}
	return types.CanCreateUnderNamespace(ctx, r.oracle, actor, namespace, classMint, types.NamespaceAccess{Whitelisted: whitelisted})
}

// whitelisted reports whether a whitelist entry for namespace is stored
// under (mint, namespace). A record of another kind, or one naming a
// different namespace, grants nothing.
func (r *Registry) whitelisted(ctx context.Context, mint, namespace types.ID) (bool, error) {
	rec, err := r.store.Read(ctx, r.keys.WhitelistKey(mint, namespace))
	if errors.Is(err, types.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Kind != types.KindWhitelist {
		return false, nil
	}
	wl, err := record.DecodeWhitelist(rec.Data)
	if err != nil {
		return false, err
	}
	return wl.Namespace == namespace, nil
}

func (r *Registry) namespaceClass(ctx context.Context, actor, mint, namespace types.ID) (types.Key, *types.PlayerClass, error) {
	ok, err := r.CanCreateUnderNamespace(ctx, actor, namespace, mint)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("namespace %s: %w", namespace, types.ErrNamespaceDenied)
	}
	key := r.keys.ClassKey(mint, namespace)
	c, err := r.loadClass(ctx, key)
	if err != nil {
		return "", nil, err
	}
	return key, c, nil
}

// RegisterNamespace adds namespace to mint's index and marks the class
// stored there as indexed. Registering twice is a no-op. A full index
// returns ErrIndexFull and nothing is written. The class is written before
// the index and is restored if the index write fails.
func (r *Registry) RegisterNamespace(ctx context.Context, actor, mint, namespace types.ID) (*types.PlayerClassIndex, error) {
	key, c, err := r.namespaceClass(ctx, actor, mint, namespace)
	if err != nil {
		return nil, err
	}
	index, err := r.Index(ctx, mint)
	if err != nil {
		return nil, err
	}
	if err := index.Register(namespace); err != nil {
		return nil, fmt.Errorf("registering %s: %w", namespace, err)
	}
	if err := r.setIndexed(ctx, key, c, true, func() error { return r.writeIndex(ctx, mint, index) }); err != nil {
		return nil, err
	}
	r.logger.Debug("namespace registered", "mint", mint, "namespace", namespace, "size", len(index.Namespaces))
	return index, nil
}

// UnregisterNamespace removes namespace from mint's index. Removing a
// namespace that is not registered succeeds and changes nothing. Writes are
// ordered as in RegisterNamespace.
func (r *Registry) UnregisterNamespace(ctx context.Context, actor, mint, namespace types.ID) (*types.PlayerClassIndex, error) {
	key, c, err := r.namespaceClass(ctx, actor, mint, namespace)
	if err != nil {
		return nil, err
	}
	index, err := r.Index(ctx, mint)
	if err != nil {
		return nil, err
	}
	if !index.Contains(namespace) && !c.Indexed {
		return index, nil
	}
	index.Unregister(namespace)
	if err := r.setIndexed(ctx, key, c, false, func() error { return r.writeIndex(ctx, mint, index) }); err != nil {
		return nil, err
	}
	r.logger.Debug("namespace unregistered", "mint", mint, "namespace", namespace)
	return index, nil
}

// setIndexed writes the class with its Indexed flag set to indexed, then
// runs writeIndex. A failed index write puts the class back as it was.
func (r *Registry) setIndexed(ctx context.Context, key types.Key, c *types.PlayerClass, indexed bool, writeIndex func() error) error {
	if c.Indexed == indexed {
		return writeIndex()
	}
	next := c.Clone()
	next.Indexed = indexed
	if err := r.writeClass(ctx, key, next); err != nil {
		return err
	}
	if err := writeIndex(); err != nil {
		return r.undo(ctx, key, err, func() error { return r.writeClass(ctx, key, c) })
	}
	return nil
}

// AddWhitelist lets namespace operate on the class minted as mint without
// holding its token. The actor must hold the class mint.
func (r *Registry) AddWhitelist(ctx context.Context, actor, mint, namespace types.ID) error {
	if namespace.IsZero() {
		return fmt.Errorf("whitelist namespace: %w", types.ErrInvalidID)
	}
	if err := r.holds(ctx, actor, mint, types.ErrUpdateDenied); err != nil {
		return err
	}
	data := record.EncodeWhitelist(&types.PlayerClassNamespaceWhitelist{Namespace: namespace})
	return r.store.Write(ctx, types.Record{Key: r.keys.WhitelistKey(mint, namespace), Kind: types.KindWhitelist, Data: data})
}

// RemoveWhitelist deletes the whitelist entry for (mint, namespace).
func (r *Registry) RemoveWhitelist(ctx context.Context, actor, mint, namespace types.ID) error {
	if err := r.holds(ctx, actor, mint, types.ErrUpdateDenied); err != nil {
		return err
	}
	err := r.store.Delete(ctx, r.keys.WhitelistKey(mint, namespace))
	if errors.Is(err, types.ErrRecordNotFound) {
		return fmt.Errorf("namespace %s: %w", namespace, types.ErrWhitelistNotFound)
	}
	return err
}
