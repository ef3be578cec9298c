// Package utils provides small helpers shared across layers, independent of
// any domain logic.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. The ops API reads its page and page_size query parameters through
// it, so a missing or garbage value falls back to the listing defaults
// instead of failing the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
