package record

import (
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

const (
	boundMin uint8 = 1 << iota
	boundMax
)

func (w *writer) uri(f types.StatsURI) error {
	w.u8(uint8(f.Inherited))
	return w.str16(f.URI)
}

func (r *reader) uri() types.StatsURI {
	state := r.state()
	return types.StatsURI{URI: r.str16(), Inherited: state}
}

func (w *writer) policy(u types.UpdatePermissiveness) {
	w.u8(uint8(u.Kind))
	w.u8(uint8(u.Inherited))
}

func (r *reader) policy() types.UpdatePermissiveness {
	kind := types.PermissivenessKind(r.u8())
	if r.err == nil && !kind.Valid() {
		r.fail("update permissiveness %d", kind)
	}
	return types.UpdatePermissiveness{Kind: kind, Inherited: r.state()}
}

func (w *writer) stats(stats types.Stats) error {
	if len(stats) > 0xFFFF {
		return fmt.Errorf("%d stats: %w", len(stats), types.ErrInvalidData)
	}
	w.u16(uint16(len(stats)))
	for _, s := range stats {
		if err := w.stat(s); err != nil {
			return fmt.Errorf("stat %q: %w", s.Name, err)
		}
	}
	return nil
}

func (w *writer) stat(s types.BasicStat) error {
	if err := w.str8(s.Name); err != nil {
		return err
	}
	w.u8(uint8(s.Inherited))
	t := s.Type
	w.u8(uint8(t.Kind))
	switch t.Kind {
	case types.StatEnum:
		if len(t.Values) > types.MaxEnumValues {
			return types.ErrInvalidStatType
		}
		w.u8(uint8(len(t.Values)))
		for _, v := range t.Values {
			if err := w.str8(v); err != nil {
				return err
			}
		}
		w.i64(t.Value.Int)
	case types.StatInteger:
		var bounds uint8
		var lo, hi int64
		if t.Min != nil {
			bounds |= boundMin
			lo = *t.Min
		}
		if t.Max != nil {
			bounds |= boundMax
			hi = *t.Max
		}
		w.u8(bounds)
		w.i64(lo)
		w.i64(hi)
		w.i64(t.Value.Int)
	case types.StatBool:
		w.flag(t.Value.Bool)
	case types.StatText:
		return w.str8(t.Value.Text)
	default:
		return types.ErrInvalidStatType
	}
	return nil
}

func (r *reader) stats() types.Stats {
	n := int(r.u16())
	if r.err != nil || n == 0 {
		return nil
	}
	out := make(types.Stats, 0, n)
	for range n {
		s := r.stat()
		if r.err != nil {
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (r *reader) stat() types.BasicStat {
	s := types.BasicStat{Name: r.str8()}
	s.Inherited = r.state()
	kind := types.StatKind(r.u8())
	t := types.BasicStatType{Kind: kind}
	switch kind {
	case types.StatEnum:
		n := int(r.u8())
		for range n {
			t.Values = append(t.Values, r.str8())
		}
		t.Value = types.EnumValue(r.i64())
	case types.StatInteger:
		bounds := r.u8()
		lo, hi := r.i64(), r.i64()
		if bounds&boundMin != 0 {
			t.Min = types.Bound(lo)
		}
		if bounds&boundMax != 0 {
			t.Max = types.Bound(hi)
		}
		t.Value = types.IntegerValue(r.i64())
	case types.StatBool:
		t.Value = types.BoolValue(r.flag())
	case types.StatText:
		t.Value = types.TextValue(r.str8())
	default:
		r.fail("stat kind %d", kind)
	}
	s.Type = t
	return s
}
