package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultHandle is used when a name has no sluggable characters.
const DefaultHandle = "produk"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, drops diacritics and joins the remaining
// alphanumeric runs with single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// HandleFor derives a product handle from its name. Blank names give "".
func HandleFor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if h := Slugify(name); h != "" {
		return h
	}
	return DefaultHandle
}
