package value

import "unicode/utf16"

// Strings are stored as Go (UTF-8) strings, but ECMAScript indexes
// strings by UTF-16 code unit. These helpers bridge the two
// representations for .length, charCodeAt, and friends, converting on
// demand rather than carrying a parallel []uint16 form everywhere.

// UTF16Length returns the string's length in UTF-16 code units.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// UTF16Units returns s decoded into UTF-16 code units.
func UTF16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// UTF16FromUnits re-encodes UTF-16 code units (which may include
// unpaired surrogates from malformed input) back into a Go string,
// substituting U+FFFD for lone surrogates it cannot decode.
func UTF16FromUnits(units []uint16) string {
	return string(utf16.Decode(units))
}

// CharCodeAt returns the UTF-16 code unit at index, and false if index
// is out of range.
func CharCodeAt(s string, index int) (uint16, bool) {
	units := UTF16Units(s)
	if index < 0 || index >= len(units) {
		return 0, false
	}
	return units[index], true
}

// CodePointAt returns the Unicode code point starting at UTF-16 index,
// combining a surrogate pair when present.
func CodePointAt(s string, index int) (rune, bool) {
	units := UTF16Units(s)
	if index < 0 || index >= len(units) {
		return 0, false
	}
	first := units[index]
	if first >= 0xD800 && first <= 0xDBFF && index+1 < len(units) {
		second := units[index+1]
		if second >= 0xDC00 && second <= 0xDFFF {
			return utf16.DecodeRune(rune(first), rune(second)), true
		}
	}
	return rune(first), true
}
