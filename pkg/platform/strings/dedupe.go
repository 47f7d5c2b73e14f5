// Package strings provides string slice helpers shared by stores.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value, drops empty ones and keeps the first
// occurrence of each distinct value. Order is preserved.
//
//	DedupeAndTrim([]string{"  a ", "b", "a", ""}) // []string{"a", "b"}
func DedupeAndTrim(values []string) []string {
	return DedupeAndTrimN(values, -1)
}

// DedupeAndTrimN is DedupeAndTrim that stops after limit distinct values.
// A negative limit means no limit.
//
//	DedupeAndTrimN([]string{"a", "b", "a", "c"}, 2) // []string{"a", "b"}
func DedupeAndTrimN(values []string, limit int) []string {
	if len(values) == 0 {
		return values
	}
	capacity := len(values)
	if limit >= 0 && limit < capacity {
		capacity = limit
	}
	seen := make(map[string]struct{}, capacity)
	result := make([]string, 0, capacity)
	for _, v := range values {
		if limit >= 0 && len(result) >= limit {
			break
		}
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
