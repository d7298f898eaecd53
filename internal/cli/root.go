// Package cli wires the bookshelf command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrus062/bookshelf-operator/internal/config"
	"github.com/mbrus062/bookshelf-operator/internal/exitcode"
	"github.com/mbrus062/bookshelf-operator/internal/extract"
	"github.com/mbrus062/bookshelf-operator/internal/logging"
	"github.com/mbrus062/bookshelf-operator/internal/promote"
	"github.com/mbrus062/bookshelf-operator/internal/quarantine"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return codeFor(err)
	}
	return exitcode.Success
}

// exitError pins a specific exit code onto an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func codeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, extract.ErrStartNotFound):
		return exitcode.StartNotFound
	case errors.Is(err, extract.ErrEndNotFound):
		return exitcode.EndNotFound
	case errors.Is(err, extract.ErrToolNotFound):
		return exitcode.ToolNotFound
	case errors.Is(err, promote.ErrDeclined):
		return exitcode.Declined
	case errors.Is(err, promote.ErrEmptyPlan):
		return exitcode.EmptyPlan
	case errors.Is(err, quarantine.ErrEmptyBatch), errors.Is(err, quarantine.ErrNoBatches):
		return exitcode.EmptyBatch
	case errors.Is(err, quarantine.ErrArchiveFailed):
		return exitcode.ArchiveFailed
	case errors.Is(err, os.ErrNotExist):
		return exitcode.Precondition
	default:
		return exitcode.GeneralError
	}
}

// app holds the persistent flag state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
}

func (a *app) logger() *slog.Logger {
	return logging.BuildLogger(a.logLevel)
}

func (a *app) config() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, &exitError{code: exitcode.ConfigError, err: err}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Operator tooling for the ebook library and research corpus",
		Long:          "Fetches manifest-listed files, seals quarantine batches, promotes them into the permanent tree, and keeps the corpus catalog and inventory snapshots current.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to config JSON")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newFetchCmd(a),
		newSealCmd(a),
		newPromoteCmd(a),
		newRunCmd(a),
		newExtractCmd(a),
		newReindexCmd(a),
		newSearchCmd(a),
		newInventoryCmd(a),
	)

	return rootCmd
}
