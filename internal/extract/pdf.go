package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrToolNotFound reports that a required external binary is not on
// PATH. Distinct from the tool running and failing.
var ErrToolNotFound = errors.New("required external tool not found")

// PdfSlicer isolates a page range of a PDF into a standalone PDF.
type PdfSlicer interface {
	Slice(ctx context.Context, src string, first int, last int, dest string) error
}

// TextExtractor converts a PDF to plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// QPDFSlicer shells out to qpdf.
type QPDFSlicer struct {
	Binary string
}

func NewQPDFSlicer(binary string) *QPDFSlicer {
	if binary == "" {
		binary = "qpdf"
	}
	return &QPDFSlicer{Binary: binary}
}

func (s *QPDFSlicer) Slice(ctx context.Context, src string, first int, last int, dest string) error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, s.Binary)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pages := fmt.Sprintf("%d-%d", first, last)
	cmd := exec.CommandContext(ctx, s.Binary, src, "--pages", src, pages, "--", dest)
	cmd.WaitDelay = 5 * time.Second
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("qpdf failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// PopplerExtractor shells out to pdftotext.
type PopplerExtractor struct {
	Binary string
}

func NewPopplerExtractor(binary string) *PopplerExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PopplerExtractor{Binary: binary}
}

func (p *PopplerExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, p.Binary)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Binary, "-nopgbrk", "-layout", pdfPath, "-")
	cmd.WaitDelay = 5 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// PDFExtractor slices a page range out of a source PDF, converts it to
// plain text, and writes it with the same provenance treatment as the
// line-range strategies.
type PDFExtractor struct {
	Source       string
	OutRoot      string
	SourceVolume string
	Label        string
	Slicer       PdfSlicer
	Text         TextExtractor
}

// FromPDF extracts pages [first, last] inclusive. The target directory is
// rebuilt from scratch like every other extraction.
func (e *PDFExtractor) FromPDF(ctx context.Context, spec Spec, first int, last int) (string, error) {
	if first < 1 || last < first {
		return "", fmt.Errorf("invalid page range %d-%d", first, last)
	}

	tmpDir, err := os.MkdirTemp("", "bookshelf-pdf-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	slicePath := filepath.Join(tmpDir, "slice.pdf")
	if err := e.Slicer.Slice(ctx, e.Source, first, last, slicePath); err != nil {
		return "", fmt.Errorf("slice pages: %w", err)
	}

	text, err := e.Text.ExtractText(ctx, slicePath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = SanitizeLine(line)
	}

	writer := &Extractor{
		Witness:      e.Source,
		OutRoot:      e.OutRoot,
		SourceVolume: e.SourceVolume,
		Label:        e.Label,
		lines:        lines,
	}
	if writer.Label == "" {
		writer.Label = "pdf"
	}
	return writer.write(spec, lines, fmt.Sprintf("pages %d-%d", first, last))
}
