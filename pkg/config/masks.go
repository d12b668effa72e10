package config

import (
	"strings"
	"unicode"
)

// ParseMasks splits s on runs of ',', ';' or whitespace. Empty tokens are
// dropped and repeated tokens keep their first position.
func ParseMasks(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	seen := make(map[string]bool, len(fields))
	masks := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		masks = append(masks, f)
	}
	return masks
}
