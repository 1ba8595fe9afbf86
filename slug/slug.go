// Package slug maps raw URL path segments onto the lookup keys used for posts.
package slug

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reWhitespace = regexp.MustCompile(`[\s\p{Zs}]+`)
	reHyphens    = regexp.MustCompile(`-{2,}`)
	reNonSlug    = regexp.MustCompile(`[^a-z0-9-]`)
)

var punctuation = strings.NewReplacer(
	"—", "-", // em dash
	"–", "-", // en dash
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize returns the canonical lookup key for raw. It never fails; input
// that cannot be URL-decoded is normalized as-is.
func Normalize(raw string) string {
	s := unescape(raw)
	s = norm.NFC.String(strings.ToLower(norm.NFC.String(s)))
	s = punctuation.Replace(s)
	s = reWhitespace.ReplaceAllString(s, "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Relaxed is the second, more aggressive pass used when a lookup by the
// normalized key finds nothing: quotes are dropped and every other
// non-alphanumeric rune becomes a hyphen.
func Relaxed(s string) string {
	s = Normalize(s)
	s = strings.NewReplacer("'", "", `"`, "").Replace(s)
	s = reNonSlug.ReplaceAllString(s, "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// unescape percent-decodes s until it stops changing or stops decoding.
// Every successful pass shrinks s, so the loop terminates.
func unescape(s string) string {
	for strings.Contains(s, "%") {
		decoded, err := url.PathUnescape(s)
		if err != nil || decoded == s {
			break
		}
		s = decoded
	}
	return s
}
