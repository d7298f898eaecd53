package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/manifest"
	"github.com/mbrus062/bookshelf-operator/internal/promote"
	"github.com/mbrus062/bookshelf-operator/internal/quarantine"
)

func newPromoteCmd(a *app) *cobra.Command {
	var (
		yes      bool
		batchDir string
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Promote the newest quarantine batch into the permanent tree",
		Long:  "Cross-references the manifest against the chosen quarantine batch, shows the copy plan, and after confirmation copies matched files into the tree (never overwriting) and archives the batch.",
		RunE: func(_ *cobra.Command, _ []string) error {
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

			if batchDir == "" {
				batchDir, err = quarantine.Newest(cfg.StagingDir, cfg.ArchiveDir)
				if err != nil {
					return err
				}
			}
			logger.Info("using batch", "batch", batchDir)

			plan, err := promote.Plan(entries, batchDir, cfg.Root)
			if err != nil {
				return err
			}
			if len(plan) == 0 {
				// Batch stays put so the operator can investigate why
				// nothing matched.
				return promote.ErrEmptyPlan
			}

			fmt.Fprintf(os.Stdout, "Promotion plan (%d file(s)):\n", len(plan))
			promote.Describe(plan, os.Stdout)

			var confirmer promote.Confirmer = promote.PromptConfirm{}
			if yes {
				confirmer = promote.AlwaysConfirm{}
			}
			ok, err := confirmer.Confirm(plan)
			if err != nil {
				return err
			}
			if !ok {
				return promote.ErrDeclined
			}

			counts, err := promote.Execute(plan, logger)
			if err != nil {
				return err
			}

			// A batch picked up from the archive fallback is already
			// retired; only pending batches get moved.
			if filepath.Dir(batchDir) != filepath.Clean(cfg.ArchiveDir) {
				archived, err := quarantine.Archive(batchDir, cfg.ArchiveDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Copied %d, already present %d. Batch archived to %s\n",
					counts.Copied, counts.Existed, archived)
				return nil
			}

			fmt.Fprintf(os.Stdout, "Copied %d, already present %d.\n", counts.Copied, counts.Existed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the interactive confirmation prompt")
	cmd.Flags().StringVar(&batchDir, "batch", "", "Promote a specific batch directory instead of the newest")

	return cmd
}
