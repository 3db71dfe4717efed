package record

import (
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

// EncodeClass returns the binary record for c.
func EncodeClass(c *types.PlayerClass) ([]byte, error) {
	w := &writer{}
	w.u8(Version)
	w.id(c.Mint)
	w.id(c.Metadata)
	w.id(c.Edition)
	w.id(c.Namespace)
	w.flag(c.Indexed)
	if err := w.uri(c.StartingStatsURI); err != nil {
		return nil, fmt.Errorf("encode class: %w", err)
	}
	w.u8(uint8(c.DefaultCategory.Inherited))
	if err := w.str8(c.DefaultCategory.Category); err != nil {
		return nil, fmt.Errorf("encode class: %w", err)
	}
	w.policy(c.DefaultUpdatePermissiveness)

	policies := c.ChildUpdatePropagationPermissiveness
	if len(policies) > 0xFF {
		return nil, fmt.Errorf("encode class: %d propagation entries: %w", len(policies), types.ErrInvalidData)
	}
	w.u8(uint8(len(policies)))
	for _, e := range policies {
		w.u8(uint8(e.Domain))
		w.flag(e.Overridable)
	}

	if err := w.stats(c.BasicStats); err != nil {
		return nil, fmt.Errorf("encode class: %w", err)
	}
	w.flag(c.Parent != nil)
	if c.Parent != nil {
		if err := w.str16(string(*c.Parent)); err != nil {
			return nil, fmt.Errorf("encode class: %w", err)
		}
	}
	return w.buf, nil
}

// DecodeClass parses a record written by EncodeClass.
func DecodeClass(data []byte) (*types.PlayerClass, error) {
	r := &reader{buf: data}
	r.header()
	c := &types.PlayerClass{
		Mint:      r.id(),
		Metadata:  r.id(),
		Edition:   r.id(),
		Namespace: r.id(),
		Indexed:   r.flag(),
	}
	c.StartingStatsURI = r.uri()
	c.DefaultCategory.Inherited = r.state()
	c.DefaultCategory.Category = r.str8()
	c.DefaultUpdatePermissiveness = r.policy()

	n := int(r.u8())
	for range n {
		d := types.FieldDomain(r.u8())
		if r.err == nil && !d.Valid() {
			r.fail("field domain %d", d)
		}
		c.ChildUpdatePropagationPermissiveness = append(c.ChildUpdatePropagationPermissiveness,
			types.ChildUpdatePropagationPermissiveness{Domain: d, Overridable: r.flag()})
	}

	c.BasicStats = r.stats()
	if r.flag() {
		parent := types.Key(r.str16())
		c.Parent = &parent
	}
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode class: %w", err)
	}
	return c, nil
}
