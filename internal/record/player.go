package record

import (
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

// EncodePlayer returns the binary record for p.
func EncodePlayer(p *types.Player) ([]byte, error) {
	w := &writer{}
	w.u8(Version)
	w.id(p.Mint)
	w.id(p.Metadata)
	w.id(p.Edition)
	w.id(p.Namespace)
	w.flag(p.Indexed)
	if err := w.str16(string(p.Parent)); err != nil {
		return nil, fmt.Errorf("encode player: %w", err)
	}
	if err := w.uri(p.StatsURI); err != nil {
		return nil, fmt.Errorf("encode player: %w", err)
	}

	w.flag(p.Category != nil)
	if p.Category != nil {
		w.u8(uint8(p.Category.Inherited))
		if err := w.str8(p.Category.Category); err != nil {
			return nil, fmt.Errorf("encode player: %w", err)
		}
	}
	w.flag(p.UpdatePermissiveness != nil)
	if p.UpdatePermissiveness != nil {
		w.policy(*p.UpdatePermissiveness)
	}

	if len(p.EquippedItems) > 0xFFFF {
		return nil, fmt.Errorf("encode player: %d equipped items: %w", len(p.EquippedItems), types.ErrInvalidData)
	}
	w.u16(uint16(len(p.EquippedItems)))
	for _, e := range p.EquippedItems {
		if err := w.slot(e); err != nil {
			return nil, fmt.Errorf("encode player: item %s: %w", e.Item, err)
		}
	}

	if err := w.stats(p.BasicStats); err != nil {
		return nil, fmt.Errorf("encode player: %w", err)
	}
	return w.buf, nil
}

// DecodePlayer parses a record written by EncodePlayer.
func DecodePlayer(data []byte) (*types.Player, error) {
	r := &reader{buf: data}
	r.header()
	p := &types.Player{
		Mint:      r.id(),
		Metadata:  r.id(),
		Edition:   r.id(),
		Namespace: r.id(),
		Indexed:   r.flag(),
	}
	p.Parent = types.Key(r.str16())
	p.StatsURI = r.uri()

	if r.flag() {
		state := r.state()
		p.Category = &types.PlayerCategory{Category: r.str8(), Inherited: state}
	}
	if r.flag() {
		u := r.policy()
		p.UpdatePermissiveness = &u
	}

	n := int(r.u16())
	for range n {
		e := r.slot()
		if r.err != nil {
			break
		}
		p.EquippedItems = append(p.EquippedItems, e)
	}

	p.BasicStats = r.stats()
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return p, nil
}

func (w *writer) slot(e types.EquippedItem) error {
	w.id(e.Item)
	w.id(e.ItemClass)
	if err := w.label(e.BodyPart); err != nil {
		return fmt.Errorf("body part: %w", err)
	}
	if err := w.label(e.Category); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	w.zero(slotReserved)
	return nil
}

func (r *reader) slot() types.EquippedItem {
	e := types.EquippedItem{
		Item:      r.id(),
		ItemClass: r.id(),
		BodyPart:  r.label(),
		Category:  r.label(),
	}
	r.take(slotReserved)
	return e
}
