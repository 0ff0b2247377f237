// Package utils holds small helpers shared across layers, free of any
// domain or transport concerns.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def when s is empty or
// not a valid integer. Handlers use it for optional numeric query
// parameters such as the list limit.
//
//	utils.AtoiDefault("25", 100) // 25
//	utils.AtoiDefault("", 100)   // 100
//	utils.AtoiDefault("x", 100)  // 100
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
