// Package record encodes players, classes, index and whitelist entries as
// the little-endian binary records the storage collaborator persists.
//
// Every record starts with a schema version byte. Strings carry a length
// prefix; equipment slots and the namespace index are fixed-size so that
// records grow by appending whole slots.
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

// Version is the schema version written at the head of every record.
const Version byte = 1

// EquippedSlotSize is the encoded size of one equipment slot: item, item
// class, two length-prefixed labels and reserved space.
const EquippedSlotSize = types.IDSize*2 + (1+types.MaxLabelBytes)*2 + slotReserved

const slotReserved = 30

// IndexSize is the encoded size of a PlayerClassIndex.
const IndexSize = 2 + types.MaxNamespaces*types.IDSize

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) i64(v int64)  { w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v)) }
func (w *writer) id(v types.ID) {
	w.buf = append(w.buf, v[:]...)
}

func (w *writer) flag(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

// str8 writes a string with a one-byte length prefix.
func (w *writer) str8(s string) error {
	if len(s) > 0xFF {
		return fmt.Errorf("string of %d bytes: %w", len(s), types.ErrInvalidData)
	}
	w.u8(uint8(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// str16 writes a string with a two-byte length prefix.
func (w *writer) str16(s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string of %d bytes: %w", len(s), types.ErrInvalidData)
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// label writes a string into a fixed slot of 1+MaxLabelBytes bytes.
func (w *writer) label(s string) error {
	if len(s) > types.MaxLabelBytes {
		return types.ErrLabelTooLong
	}
	w.u8(uint8(len(s)))
	w.buf = append(w.buf, s...)
	w.zero(types.MaxLabelBytes - len(s))
	return nil
}

func (w *writer) zero(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// reader consumes a record. The first short read sets err and every later
// call returns zero values, so decoders check err once at the end of a
// section.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("short record at offset %d: %w", r.off, types.ErrInvalidData)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) i64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *reader) id() types.ID {
	var id types.ID
	copy(id[:], r.take(types.IDSize))
	return id
}

func (r *reader) flag() bool {
	switch v := r.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail("flag byte %d", v)
		return false
	}
}

func (r *reader) str8() string  { return string(r.take(int(r.u8()))) }
func (r *reader) str16() string { return string(r.take(int(r.u16()))) }

func (r *reader) label() string {
	slot := r.take(1 + types.MaxLabelBytes)
	if slot == nil {
		return ""
	}
	n := int(slot[0])
	if n > types.MaxLabelBytes {
		r.fail("label length %d", n)
		return ""
	}
	return string(slot[1 : 1+n])
}

func (r *reader) state() types.InheritanceState {
	s := types.InheritanceState(r.u8())
	if r.err == nil && !s.Valid() {
		r.fail("inheritance state %d", s)
	}
	return s
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), types.ErrInvalidData)
	}
}

// header checks the version byte.
func (r *reader) header() {
	if v := r.u8(); r.err == nil && v != Version {
		r.fail("record version %d", v)
	}
}

// finish reports the first decode error, or trailing bytes.
func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return fmt.Errorf("%d trailing bytes: %w", len(r.buf)-r.off, types.ErrInvalidData)
	}
	return nil
}
