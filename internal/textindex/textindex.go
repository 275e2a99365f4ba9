// Package textindex converts between Go string byte offsets and the UTF-16
// code unit offsets used by document indices.
package textindex

import "unicode/utf8"

// Len returns the length of s in UTF-16 code units.
func Len(s string) int64 {
	var n int64
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// Units returns the UTF-16 offset of the byte offset off within s.
// Offsets past the end of s are clamped.
func Units(s string, off int) int64 {
	if off > len(s) {
		off = len(s)
	}
	return Len(s[:off])
}

// ByteOffset returns the byte offset in s that corresponds to the UTF-16
// offset units. Offsets past the end of s return len(s). An offset falling in
// the middle of a surrogate pair rounds up to the next rune boundary.
func ByteOffset(s string, units int64) int {
	if units <= 0 {
		return 0
	}
	var n int64
	for i, r := range s {
		if n >= units {
			return i
		}
		n += runeUnits(r)
	}
	return len(s)
}

func runeUnits(r rune) int64 {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
