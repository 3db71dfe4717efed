package record

import (
	"fmt"

	"github.com/mesh-intelligence/player/pkg/types"
)

// EncodeIndex returns the fixed-size record for x.
func EncodeIndex(x *types.PlayerClassIndex) ([]byte, error) {
	if len(x.Namespaces) > types.MaxNamespaces {
		return nil, fmt.Errorf("encode index: %w", types.ErrIndexFull)
	}
	w := &writer{buf: make([]byte, 0, IndexSize)}
	w.u8(Version)
	w.u8(uint8(len(x.Namespaces)))
	for _, ns := range x.Namespaces {
		w.id(ns)
	}
	w.zero((types.MaxNamespaces - len(x.Namespaces)) * types.IDSize)
	return w.buf, nil
}

// DecodeIndex parses a record written by EncodeIndex.
func DecodeIndex(data []byte) (*types.PlayerClassIndex, error) {
	if len(data) != IndexSize {
		return nil, fmt.Errorf("decode index: %d bytes: %w", len(data), types.ErrInvalidData)
	}
	r := &reader{buf: data}
	r.header()
	n := int(r.u8())
	if r.err == nil && n > types.MaxNamespaces {
		r.fail("index count %d", n)
	}
	x := &types.PlayerClassIndex{}
	for i := range types.MaxNamespaces {
		ns := r.id()
		if i < n {
			x.Namespaces = append(x.Namespaces, ns)
		}
	}
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return x, nil
}

// EncodeWhitelist returns the record for wl.
func EncodeWhitelist(wl *types.PlayerClassNamespaceWhitelist) []byte {
	w := &writer{}
	w.u8(Version)
	w.id(wl.Namespace)
	return w.buf
}

// DecodeWhitelist parses a record written by EncodeWhitelist.
func DecodeWhitelist(data []byte) (*types.PlayerClassNamespaceWhitelist, error) {
	r := &reader{buf: data}
	r.header()
	wl := &types.PlayerClassNamespaceWhitelist{Namespace: r.id()}
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode whitelist: %w", err)
	}
	return wl, nil
}
