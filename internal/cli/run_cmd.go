package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/fetcher"
	"github.com/mbrus062/bookshelf-operator/internal/inventory"
	"github.com/mbrus062/bookshelf-operator/internal/pipeline"
	"github.com/mbrus062/bookshelf-operator/internal/promote"
)

func newRunCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: fetch, seal, promote, archive, report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			logger := a.logger()

			dl := fetcher.NewHTTPDownloader()
			dl.Logger = logger

			var confirmer promote.Confirmer = promote.PromptConfirm{}
			if yes {
				confirmer = promote.AlwaysConfirm{}
			}

			runner := &pipeline.Runner{
				ManifestPath: cfg.ManifestPath,
				StagingDir:   cfg.StagingDir,
				ArchiveDir:   cfg.ArchiveDir,
				Root:         cfg.Root,
				Downloader:   dl,
				Hasher:       fetcher.SHA256Hasher{},
				Confirmer:    confirmer,
				Reporter: &inventory.Reporter{
					ScanRoots: cfg.ScanRoots,
					OutDir:    cfg.LogDir,
					Logger:    logger,
				},
				ReportCommand: cfg.ReportCommand,
				FailureLog:    cfg.FailureLogPath(),
				Logger:        logger,
			}

			status, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout,
				"Run complete: fetched %d (failed %d), planned %d, copied %d, already present %d, archived %s\n",
				status.Fetched, status.FetchFailed, status.Planned, status.Copied, status.Existed, status.ArchivedTo)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the interactive confirmation prompt")

	return cmd
}
