package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanSeatList trims every seat code and drops blanks, keeping request order.
func CleanSeatList(seats []string) []string {
	out := make([]string, 0, len(seats))
	for _, p := range seats {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
