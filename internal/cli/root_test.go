package cli

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/mbrus062/bookshelf-operator/internal/exitcode"
	"github.com/mbrus062/bookshelf-operator/internal/extract"
	"github.com/mbrus062/bookshelf-operator/internal/promote"
	"github.com/mbrus062/bookshelf-operator/internal/quarantine"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"start marker", fmt.Errorf("extract: %w", extract.ErrStartNotFound), exitcode.StartNotFound},
		{"end marker", fmt.Errorf("extract: %w", extract.ErrEndNotFound), exitcode.EndNotFound},
		{"missing tool", fmt.Errorf("qpdf: %w", extract.ErrToolNotFound), exitcode.ToolNotFound},
		{"declined", promote.ErrDeclined, exitcode.Declined},
		{"empty plan", promote.ErrEmptyPlan, exitcode.EmptyPlan},
		{"empty batch", quarantine.ErrEmptyBatch, exitcode.EmptyBatch},
		{"no batches", quarantine.ErrNoBatches, exitcode.EmptyBatch},
		{"archive failed", fmt.Errorf("%w: device full", quarantine.ErrArchiveFailed), exitcode.ArchiveFailed},
		{"missing path", fmt.Errorf("read: %w", os.ErrNotExist), exitcode.Precondition},
		{"pinned code", &exitError{code: exitcode.ConfigError, err: errors.New("bad config")}, exitcode.ConfigError},
		{"anything else", errors.New("boom"), exitcode.GeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeFor(tt.err); got != tt.want {
				t.Errorf("codeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("bad config")
	err := error(&exitError{code: exitcode.ConfigError, err: inner})
	if !errors.Is(err, inner) {
		t.Error("exitError should unwrap to its cause")
	}
	if err.Error() != "bad config" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	rootCmd := newRootCmd()
	want := []string{"fetch", "seal", "promote", "run", "extract", "reindex", "search", "inventory"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
