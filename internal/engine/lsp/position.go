package lsp

import "unicode/utf16"

// utf16Column converts a 0-based byte offset within line to UTF-16 code units.
func utf16Column(line string, byteCol int) int {
	if byteCol <= 0 {
		return 0
	}
	units := 0
	for i, r := range line {
		if i >= byteCol {
			return units
		}
		units += runeUnits(r)
	}
	return units + byteCol - len(line)
}

// byteColumn converts a 0-based UTF-16 offset within line to bytes.
func byteColumn(line string, unitCol int) int {
	if unitCol <= 0 {
		return 0
	}
	units := 0
	for i, r := range line {
		if units >= unitCol {
			return i
		}
		units += runeUnits(r)
	}
	return len(line) + unitCol - units
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
