// Package extract slices bounded regions out of source documents into
// per-work directories with a synthesized provenance header and a sibling
// machine-readable metadata record. Re-extraction is idempotent: the
// target directory is rebuilt from scratch on every run.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrStartNotFound reports that the start boundary never matched.
	ErrStartNotFound = errors.New("start marker not found")
	// ErrEndNotFound reports that no end boundary matched after the start.
	ErrEndNotFound = errors.New("end marker not found")
)

// Spec identifies the work being extracted and where it belongs.
type Spec struct {
	Title    string
	Sigla    string
	Corpus   string // bucket under the output root, e.g. "Sectarian"
	Language string
	Notes    string
}

func (s Spec) language() string {
	if s.Language == "" {
		return "English"
	}
	return s.Language
}

// Metadata is the structured provenance record written alongside each
// extracted text. Created at extraction time, never updated.
type Metadata struct {
	Work         string `json:"work"`
	Sigla        string `json:"sigla,omitempty"`
	Corpus       string `json:"corpus"`
	SourceVolume string `json:"source_volume"`
	Witness      string `json:"witness"`
	Range        string `json:"range"`
	Language     string `json:"language"`
	Notes        string `json:"notes,omitempty"`
}

// Extractor operates on a single witness text per instance.
type Extractor struct {
	Witness      string // path to the source text
	OutRoot      string
	SourceVolume string // human-readable citation for the header
	Label        string // short witness tag used in output filenames
	Logger       *slog.Logger

	lines []string
}

func New(witness string, outRoot string, sourceVolume string, label string) *Extractor {
	if label == "" {
		label = "witness"
	}
	return &Extractor{
		Witness:      witness,
		OutRoot:      outRoot,
		SourceVolume: sourceVolume,
		Label:        label,
	}
}

// Load reads and sanitizes the witness. Invalid UTF-8 is tolerated; the
// sanitizer strips anything that could wedge a terminal downstream.
func (e *Extractor) Load() error {
	raw, err := os.ReadFile(e.Witness)
	if err != nil {
		return fmt.Errorf("read witness: %w", err)
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	e.lines = strings.Split(text, "\n")
	for i, line := range e.lines {
		e.lines[i] = SanitizeLine(line)
	}
	return nil
}

func (e *Extractor) ensureLoaded() error {
	if e.lines == nil {
		return e.Load()
	}
	return nil
}

// ByLines extracts the half-open 1-based line range [start, end).
func (e *Extractor) ByLines(spec Spec, start int, end int) (string, error) {
	if err := e.ensureLoaded(); err != nil {
		return "", err
	}
	if start < 1 || end <= start || end > len(e.lines)+1 {
		return "", fmt.Errorf("invalid line range %d-%d (witness has %d lines)", start, end, len(e.lines))
	}
	body := e.lines[start-1 : end-1]
	return e.write(spec, body, fmt.Sprintf("lines %d-%d", start, end))
}

// ByMarkers locates the first line matching startRe, then the first line
// strictly after it matching endRe. The region runs from the start match
// up to but not including the end match. No output is written when either
// marker is missing.
func (e *Extractor) ByMarkers(spec Spec, startRe *regexp.Regexp, endRe *regexp.Regexp) (string, error) {
	if err := e.ensureLoaded(); err != nil {
		return "", err
	}

	start := e.findFrom(startRe, 0)
	if start < 0 {
		return "", fmt.Errorf("%w: %s", ErrStartNotFound, startRe)
	}
	end := e.findFrom(endRe, start+1)
	if end < 0 {
		return "", fmt.Errorf("%w: %s", ErrEndNotFound, endRe)
	}

	body := e.lines[start:end]
	return e.write(spec, body, fmt.Sprintf("lines %d-%d", start+1, end+1))
}

// ToNextHeading is ByMarkers with the end bound by the next heading-style
// line after the start. Used when sections are contiguous and only start
// markers are authored.
func (e *Extractor) ToNextHeading(spec Spec, startRe *regexp.Regexp, headingRe *regexp.Regexp) (string, error) {
	return e.ByMarkers(spec, startRe, headingRe)
}

// findFrom returns the 0-based index of the first line at or after from
// matching re, or -1.
func (e *Extractor) findFrom(re *regexp.Regexp, from int) int {
	for i := from; i < len(e.lines); i++ {
		if re.MatchString(e.lines[i]) {
			return i
		}
	}
	return -1
}

// Folder names the per-work output directory for a spec.
func (e *Extractor) Folder(spec Spec) string {
	folder := Slugify(spec.Title)
	if spec.Sigla != "" {
		folder += "_" + Slugify(spec.Sigla)
	}
	return folder
}

// write rebuilds the target directory and emits the text plus metadata.
func (e *Extractor) write(spec Spec, body []string, rangeDesc string) (string, error) {
	folder := e.Folder(spec)
	base := filepath.Join(e.OutRoot, filepath.FromSlash(spec.Corpus), folder)

	// Full reset makes re-extraction byte-identical regardless of what a
	// previous run left behind.
	if err := os.RemoveAll(base); err != nil {
		return "", fmt.Errorf("reset target dir: %w", err)
	}
	engDir := filepath.Join(base, strings.ToLower(spec.language()))
	metaDir := filepath.Join(base, "metadata")
	for _, dir := range []string{engDir, metaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create target dir: %w", err)
		}
	}

	outTxt := filepath.Join(engDir, fmt.Sprintf("%s_%s_%s.txt", folder, e.Label, strings.ToLower(spec.language())))
	outJSON := filepath.Join(metaDir, fmt.Sprintf("%s_%s.json", folder, e.Label))

	var b strings.Builder
	for _, line := range e.header(spec, rangeDesc) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, line := range body {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := os.WriteFile(outTxt, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write extract: %w", err)
	}

	meta := Metadata{
		Work:         spec.Title,
		Sigla:        spec.Sigla,
		Corpus:       spec.Corpus,
		SourceVolume: e.SourceVolume,
		Witness:      e.Witness,
		Range:        rangeDesc,
		Language:     spec.language(),
		Notes:        spec.Notes,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(outJSON, raw, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	if e.Logger != nil {
		e.Logger.Info("extracted", "work", spec.Title, "range", rangeDesc, "output", outTxt)
	}
	return outTxt, nil
}

// header synthesizes the five-line provenance block (four text lines and
// a blank separator) prepended to every extract.
func (e *Extractor) header(spec Spec, rangeDesc string) []string {
	title := fmt.Sprintf("# %s (%s) - %s", spec.Title, spec.Sigla, spec.language())
	title = strings.ReplaceAll(title, " ()", "")
	return []string{
		title,
		"# Source: " + e.SourceVolume,
		"# Witness: " + e.Witness,
		"# Extraction: " + rangeDesc,
		"",
	}
}
