package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlicer records the requested range and creates an empty slice file.
type fakeSlicer struct {
	first, last int
}

func (s *fakeSlicer) Slice(_ context.Context, _ string, first int, last int, dest string) error {
	s.first, s.last = first, last
	return os.WriteFile(dest, []byte("%PDF-1.4"), 0o644)
}

type fakeText struct {
	text string
}

func (f *fakeText) ExtractText(context.Context, string) (string, error) {
	return f.text, nil
}

func TestFromPDF(t *testing.T) {
	outRoot := t.TempDir()
	slicer := &fakeSlicer{}
	ex := &PDFExtractor{
		Source:       "/scans/vermes-complete.pdf",
		OutRoot:      outRoot,
		SourceVolume: "Vermes, Complete Dead Sea Scrolls",
		Label:        "vermes",
		Slicer:       slicer,
		Text:         &fakeText{text: "page one text\r\npage two\x00text\n"},
	}

	out, err := ex.FromPDF(context.Background(), Spec{Title: "War Scroll", Sigla: "1QM", Corpus: "Sectarian"}, 141, 150)
	require.NoError(t, err)
	assert.Equal(t, 141, slicer.first)
	assert.Equal(t, 150, slicer.last)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(raw)

	assert.True(t, strings.HasPrefix(content, "# War Scroll (1QM) - English\n"))
	assert.Contains(t, content, "# Extraction: pages 141-150\n")
	// CRLF normalized, control characters scrubbed.
	assert.Contains(t, content, "page one text\npage two text\n")

	assert.FileExists(t, filepath.Join(outRoot, "Sectarian", "war_scroll_1qm", "metadata", "war_scroll_1qm_vermes.json"))
}

func TestFromPDF_InvalidRange(t *testing.T) {
	ex := &PDFExtractor{Slicer: &fakeSlicer{}, Text: &fakeText{}}
	_, err := ex.FromPDF(context.Background(), Spec{Title: "W", Corpus: "Sectarian"}, 0, 5)
	assert.Error(t, err)
	_, err = ex.FromPDF(context.Background(), Spec{Title: "W", Corpus: "Sectarian"}, 10, 5)
	assert.Error(t, err)
}

func TestQPDFSlicer_ToolNotFound(t *testing.T) {
	s := NewQPDFSlicer("definitely-not-installed-xyz")
	err := s.Slice(context.Background(), "in.pdf", 1, 2, "out.pdf")
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestPopplerExtractor_ToolNotFound(t *testing.T) {
	p := NewPopplerExtractor("definitely-not-installed-xyz")
	_, err := p.ExtractText(context.Background(), "in.pdf")
	require.ErrorIs(t, err, ErrToolNotFound)
}
