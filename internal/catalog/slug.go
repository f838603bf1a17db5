package catalog

import (
	"strings"
	"unicode"
)

// Slugify normalizes free text into a URL-safe slug: lowercase, ASCII letters
// and digits only, hyphen-separated. Runs of whitespace and hyphens collapse
// to a single hyphen; every other character is dropped.
//
// Pure and idempotent: Slugify(Slugify(s)) == Slugify(s). Input that contains
// no letters or digits yields "", which callers must treat as "no slug" and
// address the entity by primary id only.
func Slugify(text string) string {
	var b strings.Builder
	pending := false // a separator is owed before the next kept character

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case r == '-', unicode.IsSpace(r):
			pending = true
		}
	}

	return b.String()
}
