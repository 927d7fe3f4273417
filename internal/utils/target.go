package utils

import (
	"strings"
)

// ParseTargets splits a comma or whitespace separated target list,
// dropping empty entries and duplicates while keeping order
func ParseTargets(t string) []string {
	targets := make([]string, 0)
	seen := make(map[string]bool)

	fields := strings.FieldsFunc(t, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	for _, f := range fields {
		if seen[f] {
			continue
		}

		seen[f] = true
		targets = append(targets, f)
	}

	return targets
}
