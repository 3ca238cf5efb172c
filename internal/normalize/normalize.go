// Package normalize canonicalizes user questions into the form used as the
// dedup key throughout the service.
package normalize

import (
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases the text, strips punctuation, collapses internal
// whitespace to single spaces and trims. It is total and idempotent:
// Normalize(Normalize(s)) == Normalize(s) for any s.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
