package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/fetcher"
	"github.com/mbrus062/bookshelf-operator/internal/manifest"
)

func newFetchCmd(a *app) *cobra.Command {
	var skipSums bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch manifest-listed URLs into the staging directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			logger := a.logger()

			entries, skipped, err := manifest.Read(cfg.ManifestPath)
			if err != nil {
				return err
			}
			if skipped > 0 {
				logger.Debug("manifest rows skipped", "count", skipped)
			}

			dl := fetcher.NewHTTPDownloader()
			dl.Logger = logger
			res, err := fetcher.FetchAll(cmd.Context(), dl, entries, cfg.StagingDir, logger)
			if err != nil {
				return err
			}

			if !skipSums && res.Fetched > 0 {
				if err := fetcher.WriteSums(cfg.StagingDir, fetcher.SHA256Hasher{}); err != nil {
					return err
				}
			}

			fmt.Fprintf(os.Stdout, "Fetched %d file(s), %d failed.\n", res.Fetched, len(res.Failed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSums, "no-sums", false, "Skip writing the sha256 sums file")

	return cmd
}
