package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/catalog"
	"github.com/mbrus062/bookshelf-operator/internal/inventory"
)

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the corpus catalog from the permanent tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			logger := a.logger()

			indexer, err := catalog.NewSQLiteIndexer(cfg.IndexPath())
			if err != nil {
				return err
			}

			indexed, err := catalog.Reindex(cmd.Context(), cfg.Root, indexer, logger)
			if cerr := indexer.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close indexer: %w", cerr)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Indexed %d work(s) into %s\n", indexed, cfg.IndexPath())
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		corpus string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the corpus catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			searcher, err := catalog.NewSQLiteSearcher(cfg.IndexPath())
			if err != nil {
				return err
			}
			defer func() { _ = searcher.Close() }()

			resp, err := searcher.Search(cmd.Context(), args[0], corpus, limit, 0)
			if err != nil {
				return err
			}

			for _, r := range resp.Results {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", r.Work, r.Corpus, r.Path)
			}
			fmt.Fprintf(os.Stdout, "%d result(s) of %d total\n", len(resp.Results), resp.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpus, "corpus", "", "Restrict to one corpus bucket")
	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum results")

	return cmd
}

func newInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Write a Markdown inventory snapshot of the configured roots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			reporter := &inventory.Reporter{
				ScanRoots: cfg.ScanRoots,
				OutDir:    cfg.LogDir,
				Logger:    a.logger(),
			}
			path, err := reporter.Write(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Snapshot written: %s\n", path)
			return nil
		},
	}
}
