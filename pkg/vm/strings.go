package vm

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// Strings are stored as Go (UTF-8) strings but measured and indexed in
// UTF-16 code units, the way the emulated language sees them.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// UTF16Units returns the UTF-16 code units of s. Invalid UTF-8 encodes as U+FFFD.
func UTF16Units(s string) []uint16 {
	if isASCII(s) {
		units := make([]uint16, len(s))
		for i := 0; i < len(s); i++ {
			units[i] = uint16(s[i])
		}
		return units
	}
	encoded, err := utf16LE.NewEncoder().String(s)
	if err != nil {
		return nil
	}
	units := make([]uint16, len(encoded)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16([]byte(encoded[2*i : 2*i+2]))
	}
	return units
}

// UTF16Length is the `length` of a string value.
func UTF16Length(s string) int {
	if isASCII(s) {
		return len(s)
	}
	return len(UTF16Units(s))
}

// UTF16At returns the code unit at index as a one-unit string. A lone
// surrogate half has no UTF-8 form and decodes as U+FFFD.
func UTF16At(s string, index int) (string, bool) {
	if index < 0 {
		return "", false
	}
	if isASCII(s) {
		if index >= len(s) {
			return "", false
		}
		return s[index : index+1], true
	}
	units := UTF16Units(s)
	if index >= len(units) {
		return "", false
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], units[index])
	decoded, err := utf16LE.NewDecoder().Bytes(buf[:])
	if err != nil {
		return "�", true
	}
	return string(decoded), true
}
