package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWitness creates a numbered witness of n lines ("line 1" ... "line n").
func writeWitness(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	path := filepath.Join(t.TempDir(), "witness.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newTestExtractor(t *testing.T, witness string) (*Extractor, string) {
	t.Helper()
	outRoot := t.TempDir()
	ex := New(witness, outRoot, "Test Volume, Complete Works", "vermes")
	return ex, outRoot
}

func TestByLines_HalfOpenRangeWithHeader(t *testing.T) {
	ex, _ := newTestExtractor(t, writeWitness(t, 200))

	out, err := ex.ByLines(Spec{Title: "Register of Rebukes", Sigla: "4Q477", Corpus: "Sectarian"}, 100, 150)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")

	// Five header lines: title, source, witness, range, blank.
	assert.Equal(t, "# Register of Rebukes (4Q477) - English", lines[0])
	assert.Equal(t, "# Source: Test Volume, Complete Works", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "# Witness: "), "line 3 should cite the witness")
	assert.Equal(t, "# Extraction: lines 100-150", lines[3])
	assert.Equal(t, "", lines[4])

	// Body is exactly lines 100 through 149; the end line is excluded.
	body := lines[5 : len(lines)-1] // drop the trailing empty split element
	require.Len(t, body, 50)
	assert.Equal(t, "line 100", body[0])
	assert.Equal(t, "line 149", body[49])
}

func TestByLines_NoSiglaDropsParens(t *testing.T) {
	ex, _ := newTestExtractor(t, writeWitness(t, 10))

	out, err := ex.ByLines(Spec{Title: "Untagged Work", Corpus: "Calendars"}, 1, 3)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# Untagged Work - English\n"))
}

func TestByLines_InvalidRange(t *testing.T) {
	ex, _ := newTestExtractor(t, writeWitness(t, 10))
	spec := Spec{Title: "W", Corpus: "Sectarian"}

	_, err := ex.ByLines(spec, 0, 5)
	assert.Error(t, err)
	_, err = ex.ByLines(spec, 5, 5)
	assert.Error(t, err)
	_, err = ex.ByLines(spec, 5, 500)
	assert.Error(t, err)
}

func markerWitness(t *testing.T) string {
	t.Helper()
	content := strings.Join([]string{
		"preamble",
		"THE COMMUNITY RULE",
		"body one",
		"body two",
		"THE DAMASCUS DOCUMENT",
		"other body",
	}, "\n") + "\n"
	path := filepath.Join(t.TempDir(), "witness.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestByMarkers_RegionExcludesEndLine(t *testing.T) {
	ex, _ := newTestExtractor(t, markerWitness(t))

	out, err := ex.ByMarkers(
		Spec{Title: "Community Rule", Sigla: "1QS", Corpus: "Sectarian"},
		regexp.MustCompile(`^THE COMMUNITY RULE$`),
		regexp.MustCompile(`^THE DAMASCUS DOCUMENT$`),
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	body := strings.Split(string(raw), "\n")[5:]
	assert.Equal(t, []string{"THE COMMUNITY RULE", "body one", "body two", ""}, body)
}

func TestByMarkers_StartNotFound(t *testing.T) {
	ex, outRoot := newTestExtractor(t, markerWitness(t))

	_, err := ex.ByMarkers(
		Spec{Title: "Missing", Corpus: "Sectarian"},
		regexp.MustCompile(`^NO SUCH HEADING$`),
		regexp.MustCompile(`^THE DAMASCUS DOCUMENT$`),
	)
	require.ErrorIs(t, err, ErrStartNotFound)
	assertNoOutput(t, outRoot)
}

func TestByMarkers_EndNotFound(t *testing.T) {
	ex, outRoot := newTestExtractor(t, markerWitness(t))

	_, err := ex.ByMarkers(
		Spec{Title: "Runaway", Corpus: "Sectarian"},
		regexp.MustCompile(`^THE COMMUNITY RULE$`),
		regexp.MustCompile(`^NEVER MATCHES$`),
	)
	require.ErrorIs(t, err, ErrEndNotFound)
	assertNoOutput(t, outRoot)
}

// The end marker must match strictly after the start line, so a shared
// pattern cannot terminate the region on the start line itself.
func TestToNextHeading(t *testing.T) {
	ex, _ := newTestExtractor(t, markerWitness(t))

	out, err := ex.ToNextHeading(
		Spec{Title: "Community Rule", Sigla: "1QS", Corpus: "Sectarian"},
		regexp.MustCompile(`^THE COMMUNITY RULE$`),
		regexp.MustCompile(`^THE [A-Z ]+$`),
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "body two\n")
	assert.NotContains(t, string(raw), "DAMASCUS")
}

func assertNoOutput(t *testing.T, outRoot string) {
	t.Helper()
	dirents, err := os.ReadDir(outRoot)
	require.NoError(t, err)
	assert.Empty(t, dirents, "no output may be written on a failed extraction")
}

func TestExtraction_Idempotent(t *testing.T) {
	ex, _ := newTestExtractor(t, writeWitness(t, 50))
	spec := Spec{Title: "Repeatable", Sigla: "4Q1", Corpus: "Sectarian"}

	out1, err := ex.ByLines(spec, 10, 20)
	require.NoError(t, err)
	first, err := os.ReadFile(out1)
	require.NoError(t, err)

	// Drop a stray file into the target so the reset is observable.
	stray := filepath.Join(filepath.Dir(out1), "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))

	out2, err := ex.ByLines(spec, 10, 20)
	require.NoError(t, err)
	second, err := os.ReadFile(out2)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, first, second, "re-extraction must be byte-identical")
	_, err = os.Stat(stray)
	assert.True(t, os.IsNotExist(err), "target directory must be rebuilt from scratch")
}

func TestMetadataRecord(t *testing.T) {
	ex, outRoot := newTestExtractor(t, writeWitness(t, 50))
	spec := Spec{Title: "Register of Rebukes", Sigla: "4Q477", Corpus: "Sectarian", Notes: "early pass"}

	_, err := ex.ByLines(spec, 10, 20)
	require.NoError(t, err)

	metaPath := filepath.Join(outRoot, "Sectarian", "register_of_rebukes_4q477", "metadata", "register_of_rebukes_4q477_vermes.json")
	raw, err := os.ReadFile(metaPath)
	require.NoError(t, err)

	var meta Metadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "Register of Rebukes", meta.Work)
	assert.Equal(t, "4Q477", meta.Sigla)
	assert.Equal(t, "Sectarian", meta.Corpus)
	assert.Equal(t, "lines 10-20", meta.Range)
	assert.Equal(t, "English", meta.Language)
	assert.Equal(t, "early pass", meta.Notes)
}

func TestSanitizeLine(t *testing.T) {
	assert.Equal(t, "a b c", SanitizeLine("a\x00b\x1fc"))
	assert.Equal(t, "a b", SanitizeLine("a\u00a0b"))
	// Tab and the line's own text survive.
	assert.Equal(t, "a\tb", SanitizeLine("a\tb"))
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Register of Rebukes", "register_of_rebukes"},
		{"4Q477", "4q477"},
		{"The Prayer of Nabonidus!", "the_prayer_of_nabonidus"},
		{"'Apostrophe's", "apostrophes"},
		{"", "untitled"},
		{"***", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "The Rule", CollapseSpaces(StripHTMLTags("<b>The</b> <i>Rule</i>")))
}
