package record

import (
	"regexp"
	"strings"
)

// Complexity levels accepted for Analysis.EstimatedComplexity.
var validComplexity = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// Valid reports whether a component may be emitted. Only id and name are
// required; every other field is revealed as the stream grows.
func (c Component) Valid() bool {
	return strings.TrimSpace(c.ID) != "" && strings.TrimSpace(c.Name) != ""
}

// HasPreview reports whether preview code can be derived for the component.
func (c Component) HasPreview() bool {
	return c.Name != "" && strings.TrimSpace(c.Code) != ""
}

// KnownComplexity reports whether s is one of low, medium or high.
func KnownComplexity(s string) bool {
	return validComplexity[strings.ToLower(strings.TrimSpace(s))]
}

var (
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9-]`)
	dashRunsRe = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = dashRunsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.Trim(s[:50], "-")
	}
	return s
}
