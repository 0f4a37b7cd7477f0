// Package sanitize normalizes extracted text before persistence.
package sanitize

import "strings"

// Clean replaces characters that would break the persistence layer.
// Single quotes become spaces. Total function, never fails.
func Clean(text string) string {
	return strings.ReplaceAll(text, "'", " ")
}
