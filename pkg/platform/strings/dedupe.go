// Package strings provides string list utilities.
package strings

import (
	"strings"
)

// DedupeFunc maps every value through normalize and keeps the first
// occurrence of each result. Values that normalize to "" are dropped.
// Order is preserved.
//
// Example:
//
//	DedupeFunc([]string{"a.css", "/a.css", " "}, canonicalPath)
//	// Returns: []string{"/a.css"}
func DedupeFunc(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}
	return result
}

// DedupeAndTrim removes duplicates and blank strings, trimming whitespace
// from each element.
func DedupeAndTrim(values []string) []string {
	return DedupeFunc(values, strings.TrimSpace)
}
