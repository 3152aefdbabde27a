// Package utils holds small helpers shared across layers, free of any
// domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def when s is empty or
// not a valid integer. Used for paging query parameters, where a garbage
// value should degrade to the default rather than error.
//
//	utils.AtoiDefault("3", 1)  // 3
//	utils.AtoiDefault("", 20)  // 20
//	utils.AtoiDefault("x", 20) // 20
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
