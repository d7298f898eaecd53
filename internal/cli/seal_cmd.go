package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/quarantine"
)

func newSealCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seal",
		Short: "Seal the staging directory into a timestamped quarantine batch",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			batchDir, err := quarantine.Seal(cfg.StagingDir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Sealed batch: %s\n", batchDir)
			return nil
		},
	}
}
