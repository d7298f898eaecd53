package cli

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/extract"
)

// extractFlags are the identification flags shared by every extract
// variant.
type extractFlags struct {
	title  string
	sigla  string
	bucket string
	lang   string
	notes  string
	source string
	volume string
	label  string
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Display title of the work (required)")
	cmd.Flags().StringVar(&f.sigla, "sigla", "", "Manuscript sigla, e.g. 4Q477")
	cmd.Flags().StringVar(&f.bucket, "bucket", "Sectarian", "Corpus subdirectory under the output root")
	cmd.Flags().StringVar(&f.lang, "language", "English", "Language of the extracted text")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form provenance notes")
	cmd.Flags().StringVar(&f.source, "source", "", "Override the configured source document")
	cmd.Flags().StringVar(&f.volume, "volume", "", "Override the source volume citation")
	cmd.Flags().StringVar(&f.label, "label", "vermes", "Witness tag used in output filenames")
	_ = cmd.MarkFlagRequired("title")
}

func (f *extractFlags) spec() extract.Spec {
	return extract.Spec{
		Title:    f.title,
		Sigla:    f.sigla,
		Corpus:   f.bucket,
		Language: f.lang,
		Notes:    f.notes,
	}
}

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Slice bounded sections out of source documents with provenance",
	}

	cmd.AddCommand(
		newExtractLinesCmd(a),
		newExtractSectionCmd(a),
		newExtractPagesCmd(a),
		newExtractScanCmd(a),
	)

	return cmd
}

// textExtractor builds an Extractor from flags and config, preferring the
// per-invocation source override.
func textExtractor(a *app, f *extractFlags) (*extract.Extractor, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	witness := f.source
	if witness == "" {
		witness = cfg.WitnessTxt
	}
	if witness == "" {
		return nil, fmt.Errorf("no source document: set --source or config witness_txt")
	}
	ex := extract.New(witness, cfg.Root, f.volume, f.label)
	ex.Logger = a.logger()
	return ex, nil
}

func newExtractLinesCmd(a *app) *cobra.Command {
	flags := &extractFlags{}
	var start, end int

	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Extract a half-open 1-based line range [start, end)",
		RunE: func(_ *cobra.Command, _ []string) error {
			ex, err := textExtractor(a, flags)
			if err != nil {
				return err
			}
			out, err := ex.ByLines(flags.spec(), start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "DONE: %s\n", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&start, "start", 0, "First line of the region (1-based, required)")
	cmd.Flags().IntVar(&end, "end", 0, "Line after the last line of the region (required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newExtractSectionCmd(a *app) *cobra.Command {
	flags := &extractFlags{}
	var startPat, endPat, headingPat string

	cmd := &cobra.Command{
		Use:   "section",
		Short: "Extract between a start regex and an end (or next-heading) regex",
		RunE: func(_ *cobra.Command, _ []string) error {
			if (endPat == "") == (headingPat == "") {
				return fmt.Errorf("exactly one of --end-re or --heading-re is required")
			}

			startRe, err := regexp.Compile(startPat)
			if err != nil {
				return fmt.Errorf("bad start pattern: %w", err)
			}

			ex, err := textExtractor(a, flags)
			if err != nil {
				return err
			}

			var out string
			if endPat != "" {
				endRe, err := regexp.Compile(endPat)
				if err != nil {
					return fmt.Errorf("bad end pattern: %w", err)
				}
				out, err = ex.ByMarkers(flags.spec(), startRe, endRe)
				if err != nil {
					return err
				}
			} else {
				headingRe, err := regexp.Compile(headingPat)
				if err != nil {
					return fmt.Errorf("bad heading pattern: %w", err)
				}
				out, err = ex.ToNextHeading(flags.spec(), startRe, headingRe)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(os.Stdout, "DONE: %s\n", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&startPat, "start-re", "", "Regex matching the first line of the region (required)")
	cmd.Flags().StringVar(&endPat, "end-re", "", "Regex matching the line after the region")
	cmd.Flags().StringVar(&headingPat, "heading-re", "", "Heading regex bounding the region when no end marker is authored")
	_ = cmd.MarkFlagRequired("start-re")

	return cmd
}

func newExtractPagesCmd(a *app) *cobra.Command {
	flags := &extractFlags{}
	var first, last int

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Extract an inclusive PDF page range via qpdf and pdftotext",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			source := flags.source
			if source == "" {
				source = cfg.SourcePDF
			}
			if source == "" {
				return fmt.Errorf("no source document: set --source or config source_pdf")
			}

			label := flags.label
			if label == "vermes" {
				label = "pdf"
			}
			ex := &extract.PDFExtractor{
				Source:       source,
				OutRoot:      cfg.Root,
				SourceVolume: flags.volume,
				Label:        label,
				Slicer:       extract.NewQPDFSlicer(""),
				Text:         extract.NewPopplerExtractor(""),
			}
			out, err := ex.FromPDF(cmd.Context(), flags.spec(), first, last)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "DONE: %s\n", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&first, "first", 0, "First page of the region (1-based, required)")
	cmd.Flags().IntVar(&last, "last", 0, "Last page of the region, inclusive (required)")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")

	return cmd
}

func newExtractScanCmd(a *app) *cobra.Command {
	var (
		after  int
		limit  int
		source string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List candidate work boundaries (prints sanitized metadata only)",
		RunE: func(_ *cobra.Command, _ []string) error {
			flags := &extractFlags{source: source, title: "-"}
			ex, err := textExtractor(a, flags)
			if err != nil {
				return err
			}
			candidates, err := ex.Scan(after, limit)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", c.Line, c.Title, c.Sigla)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&after, "after", 0, "Start scanning after this line number")
	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum candidates to print")
	cmd.Flags().StringVar(&source, "source", "", "Override the configured source document")

	return cmd
}
