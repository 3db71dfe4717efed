package types

import "golang.org/x/text/unicode/norm"

// Byte limits for free-form strings. Labels and text are NFC-normalized
// before they are measured, and anything over the limit is rejected rather
// than truncated.
const (
	MaxLabelBytes     = 25
	MaxStatNameBytes  = 32
	MaxStatTextBytes  = 64
	MaxEnumValueBytes = 32
	MaxEnumValues     = 255
	MaxURIBytes       = 200
)

// NormalizeLabel returns the NFC form of s and fails with ErrLabelTooLong
// when it does not fit MaxLabelBytes.
func NormalizeLabel(s string) (string, error) {
	return normalizeBounded(s, MaxLabelBytes, ErrLabelTooLong)
}

func normalizeBounded(s string, limit int, tooLong error) (string, error) {
	n := norm.NFC.String(s)
	if len(n) > limit {
		return "", tooLong
	}
	return n, nil
}

func normalizeURI(uri string) (string, error) {
	return normalizeBounded(uri, MaxURIBytes, ErrURITooLong)
}

func normalizeStatName(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	return normalizeBounded(name, MaxStatNameBytes, ErrInvalidName)
}
