// Package promote cross-references the manifest against a sealed
// quarantine batch and copies matched files into the permanent tree.
// Permanent tree entries are write-once: an existing destination is never
// overwritten, by this package or anything else in the system.
package promote

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mbrus062/bookshelf-operator/internal/manifest"
)

// ErrEmptyPlan reports that no manifest entry matched the batch. The
// batch must be left un-archived so the operator can investigate.
var ErrEmptyPlan = errors.New("promotion plan is empty")

// ErrDeclined reports that the operator did not confirm execution.
var ErrDeclined = errors.New("promotion declined")

// Item is one planned copy.
type Item struct {
	Source string
	Dest   string
}

// Counts summarizes an executed plan.
type Counts struct {
	Copied  int
	Existed int
}

// Plan pairs each manifest entry whose filename is present in batchDir
// with its destination under root. Entries with no matching file are
// omitted; they are neither errors nor warnings.
func Plan(entries []manifest.Entry, batchDir string, root string) ([]Item, error) {
	dirents, err := os.ReadDir(batchDir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir: %w", err)
	}

	present := make(map[string]bool, len(dirents))
	for _, de := range dirents {
		if de.Type().IsRegular() {
			present[de.Name()] = true
		}
	}

	var plan []Item
	for _, entry := range entries {
		name := entry.Filename()
		if !present[name] {
			continue
		}
		plan = append(plan, Item{
			Source: filepath.Join(batchDir, name),
			Dest:   filepath.Join(root, filepath.FromSlash(entry.RelPath)),
		})
	}
	return plan, nil
}

// Execute copies each planned pair, creating destination directories as
// needed. A destination that already exists is counted and left
// byte-for-byte untouched.
func Execute(plan []Item, logger *slog.Logger) (Counts, error) {
	var counts Counts
	for _, item := range plan {
		copied, err := copyNoClobber(item.Source, item.Dest)
		if err != nil {
			return counts, fmt.Errorf("copy %s: %w", item.Source, err)
		}
		if !copied {
			if logger != nil {
				logger.Debug("destination exists, skipping", "dest", item.Dest)
			}
			counts.Existed++
			continue
		}
		if logger != nil {
			logger.Info("promoted", "source", item.Source, "dest", item.Dest)
		}
		counts.Copied++
	}
	return counts, nil
}

// copyNoClobber copies src to dest preserving mode and mtime. It reports
// false without error when dest already exists.
func copyNoClobber(src string, dest string) (bool, error) {
	if _, err := os.Lstat(dest); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat dest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("create dest dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}

	// O_EXCL makes the no-overwrite invariant atomic rather than relying
	// on the Lstat above alone.
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("create dest: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return false, fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("close dest: %w", err)
	}

	mtime := info.ModTime()
	if err := os.Chtimes(dest, mtime, mtime); err != nil {
		return false, fmt.Errorf("preserve times: %w", err)
	}
	return true, nil
}
