package extract

import (
	"regexp"
	"strings"
)

// Candidate is a possible work boundary found by Scan: a title-looking
// line followed shortly by a parenthetical sigla line. Only sanitized
// metadata is surfaced, never raw witness content.
type Candidate struct {
	Line  int // 1-based line number of the title
	Title string
	Sigla string
}

var (
	parenLineRe = regexp.MustCompile(`^\s*\([^)]{2,80}\)\s*$`)
)

// Scan walks the witness starting after line `after` and returns up to
// `limit` candidate boundaries. It is assistance for authoring extraction
// specs, not an extraction itself.
func (e *Extractor) Scan(after int, limit int) ([]Candidate, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 30
	}

	var out []Candidate
	n := len(e.lines)
	i := after + 1
	if i < 1 {
		i = 1
	}
	for i <= n && len(out) < limit {
		title := strings.TrimSpace(e.lines[i-1])
		if !looksLikeTitle(title) {
			i++
			continue
		}
		// The sigla parenthetical must be the next non-blank line; any
		// other text in between means this was running prose.
		matched := false
		for j := i; j < min(n, i+7); j++ {
			candidate := strings.TrimSpace(e.lines[j])
			if candidate == "" {
				continue
			}
			if parenLineRe.MatchString(candidate) {
				out = append(out, Candidate{
					Line:  i,
					Title: CollapseSpaces(title),
					Sigla: CollapseSpaces(candidate),
				})
				// Resume after the sigla line.
				i = j + 2
				matched = true
			}
			break
		}
		if !matched {
			i++
		}
	}
	return out, nil
}

// looksLikeTitle filters out markup, URLs, sigla lines, and running
// prose.
func looksLikeTitle(s string) bool {
	if s == "" || len(s) > 80 {
		return false
	}
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "http") || strings.HasPrefix(s, "(") {
		return false
	}
	if strings.Count(s, ".") >= 2 {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
