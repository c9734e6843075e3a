package geo

import (
	"strings"
	"unicode"
)

// PostalCodeLength is the length of a normalized US postal code key.
const PostalCodeLength = 5

// NormalizePostalCode reduces inputs like " 98229-1234 " or "2139" to a
// five-digit key. ok is false when the leading segment is not all digits.
func NormalizePostalCode(input string) (string, bool) {
	segment := strings.SplitN(strings.TrimSpace(input), "-", 2)[0]
	segment = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, segment)
	if segment == "" {
		return "", false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	switch {
	case len(segment) > PostalCodeLength:
		segment = segment[:PostalCodeLength]
	case len(segment) < PostalCodeLength:
		segment = strings.Repeat("0", PostalCodeLength-len(segment)) + segment
	}
	return segment, true
}

// FilterPostalTable normalizes table keys and drops entries with
// out-of-range coordinates. It returns the cleaned table and the number removed.
func FilterPostalTable(table map[string]Coordinates) (map[string]Coordinates, int) {
	out := make(map[string]Coordinates, len(table))
	dropped := 0
	for code, coords := range table {
		key, ok := NormalizePostalCode(code)
		if !ok || !coords.Valid() {
			dropped++
			continue
		}
		out[key] = coords
	}
	return out, dropped
}
