// Package strings holds small list helpers shared by config parsing and
// catalog normalization.
package strings

import (
	"strings"
)

// DedupeBy keeps the first value for each key, dropping values whose key is
// empty. Order is preserved.
func DedupeBy[T any](values []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		k := key(v)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, v)
	}
	return result
}

// SplitList splits a comma separated setting such as "application/PDF, image/png"
// into trimmed, lowercased, unique entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return DedupeBy(parts, func(p string) string { return p })
}
