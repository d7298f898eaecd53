// Package pipeline orchestrates one full operator run: fetch the
// manifest into staging, seal a quarantine batch, plan and execute the
// promotion, archive the batch, then trigger the inventory report.
// Everything is sequential; each stage finishes before the next begins.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mbrus062/bookshelf-operator/internal/fetcher"
	"github.com/mbrus062/bookshelf-operator/internal/inventory"
	"github.com/mbrus062/bookshelf-operator/internal/manifest"
	"github.com/mbrus062/bookshelf-operator/internal/promote"
	"github.com/mbrus062/bookshelf-operator/internal/quarantine"
)

// Status carries counters across the run's stages.
type Status struct {
	Entries     int
	Skipped     int // malformed manifest rows silently dropped
	Fetched     int
	FetchFailed int
	Planned     int
	Copied      int
	Existed     int
	BatchDir    string
	ArchivedTo  string
}

type Runner struct {
	ManifestPath string
	StagingDir   string
	ArchiveDir   string
	Root         string

	Downloader fetcher.Downloader
	Hasher     fetcher.Hasher
	Confirmer  promote.Confirmer
	Reporter   *inventory.Reporter

	ReportCommand string
	FailureLog    string
	Logger        *slog.Logger

	Now func() time.Time
}

// Run executes the whole pipeline. Empty-result conditions (nothing
// staged, nothing matched) return the quarantine/promote sentinels so the
// CLI can map them to their exit codes while leaving state untouched.
func (r *Runner) Run(ctx context.Context) (Status, error) {
	var status Status
	if r.Downloader == nil || r.Confirmer == nil {
		return status, errors.New("pipeline runner missing dependencies")
	}

	if r.FailureLog != "" {
		// Created up front so the operator can tail it during the run.
		_ = os.MkdirAll(filepath.Dir(r.FailureLog), 0o755)
		_ = os.WriteFile(r.FailureLog, nil, 0o644)
	}

	entries, skipped, err := manifest.Read(r.ManifestPath)
	if err != nil {
		return status, err
	}
	status.Entries = len(entries)
	status.Skipped = skipped
	if skipped > 0 && r.Logger != nil {
		r.Logger.Debug("manifest rows skipped", "count", skipped)
	}

	res, err := fetcher.FetchAll(ctx, r.Downloader, entries, r.StagingDir, r.Logger)
	if err != nil {
		return status, err
	}
	status.Fetched = res.Fetched
	status.FetchFailed = len(res.Failed)
	for _, failed := range res.Failed {
		r.recordFailure("fetch", failed.URL, errors.New("retries exhausted"))
	}

	if r.Hasher != nil && res.Fetched > 0 {
		if err := fetcher.WriteSums(r.StagingDir, r.Hasher); err != nil {
			return status, err
		}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	batchDir, err := quarantine.Seal(r.StagingDir, now())
	if err != nil {
		// ErrEmptyBatch is a clean early stop: nothing to promote.
		return status, err
	}
	status.BatchDir = batchDir
	if r.Logger != nil {
		r.Logger.Info("batch sealed", "batch", batchDir)
	}

	plan, err := promote.Plan(entries, batchDir, r.Root)
	if err != nil {
		return status, err
	}
	status.Planned = len(plan)
	if len(plan) == 0 {
		// Leave the batch un-archived so the operator can look at why
		// nothing matched.
		return status, promote.ErrEmptyPlan
	}

	promote.Describe(plan, os.Stdout)
	ok, err := r.Confirmer.Confirm(plan)
	if err != nil {
		return status, err
	}
	if !ok {
		return status, promote.ErrDeclined
	}

	counts, err := promote.Execute(plan, r.Logger)
	status.Copied = counts.Copied
	status.Existed = counts.Existed
	if err != nil {
		return status, err
	}

	archived, err := quarantine.Archive(batchDir, r.ArchiveDir)
	if err != nil {
		// Fatal: the promoted batch must not stay in staging.
		return status, err
	}
	status.ArchivedTo = archived
	if r.Logger != nil {
		r.Logger.Info("batch archived", "batch", archived)
	}

	r.report(ctx)
	return status, nil
}

// report runs the snapshot writer and the external report command. Both
// are best-effort; a failed report never fails a completed promotion.
func (r *Runner) report(ctx context.Context) {
	if r.Reporter != nil {
		if _, err := r.Reporter.Write(ctx); err != nil && r.Logger != nil {
			r.Logger.Error("inventory snapshot failed", "error", err)
		}
	}
	if r.ReportCommand != "" {
		if err := inventory.RunReportCommand(ctx, r.ReportCommand); err != nil && r.Logger != nil {
			r.Logger.Error("report command failed", "error", err)
		}
	}
}

func (r *Runner) recordFailure(stage string, item string, err error) {
	message := strings.TrimSpace(fmt.Sprintf("%s %s: %v", stage, item, err))

	// Append immediately so the log is tail-able mid-run.
	if r.FailureLog != "" {
		f, ferr := os.OpenFile(r.FailureLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if ferr == nil {
			_, _ = fmt.Fprintln(f, message)
			_ = f.Close()
		}
	}

	if r.Logger != nil {
		r.Logger.Warn("pipeline failure", "stage", stage, "item", item, "error", err)
	}
}
