package extract

import (
	"regexp"
	"strings"
)

// Source witnesses are OCR dumps that may contain HTML fragments,
// control characters, and malformed sigla. Nothing read from them is
// written out (or printed) unsanitized.

var (
	// ctrlRe matches control characters that can wedge terminals and
	// editors; tab and newline are kept.
	ctrlRe = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")

	htmlTagRe  = regexp.MustCompile(`<[^>]*>`)
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9]+`)
	multiUndRe = regexp.MustCompile(`_+`)
	wsRe       = regexp.MustCompile(`\s+`)
)

// SanitizeLine replaces control characters and non-breaking spaces with
// plain spaces.
func SanitizeLine(s string) string {
	s = ctrlRe.ReplaceAllString(s, " ")
	return strings.ReplaceAll(s, "\u00a0", " ")
}

// StripHTMLTags removes markup left behind by the OCR toolchain.
func StripHTMLTags(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, " "))
}

// CollapseSpaces trims and folds runs of whitespace into single spaces;
// used when echoing witness content back as metadata.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Slugify turns a display title into a filesystem-safe directory name.
func Slugify(s string) string {
	s = SanitizeLine(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("’", "", "'", "", "`", "").Replace(s)
	s = nonSlugRe.ReplaceAllString(s, "_")
	s = strings.Trim(multiUndRe.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "untitled"
	}
	return s
}
