package validate

import (
	"regexp"
	"strings"
)

var (
	// Category refs: a slug or a purely numeric id string.
	reRef = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	// Marketplace ids are short lowercase slugs.
	reMarketplace = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)
)

// Ref validates a category reference (slug or numeric-id string).
func Ref(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reRef.MatchString(s)
}

// Marketplace validates a marketplace id.
func Marketplace(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reMarketplace.MatchString(s)
}
