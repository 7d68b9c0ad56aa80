// Package utils provides shared utilities for text, math, and logging.
package utils

// Truncate shortens s to at most max runes, appending "..." when anything
// was cut. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
