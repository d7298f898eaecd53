// Package inventory writes human-readable Markdown snapshots of the
// corpus roots: how many scripts, models, and texts live where, and how
// big they are. It is the pipeline's last, non-fatal step.
package inventory

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// class pairs a display name with the glob that selects its files.
type class struct {
	Name    string
	Pattern string
}

var classes = []class{
	{"Scripts", "**/*.{py,sh,go}"},
	{"Models", "**/*.{gguf,safetensors,bin}"},
	{"Corpus text", "**/*.txt"},
	{"PDF", "**/*.pdf"},
	{"Ebooks", "**/*.{epub,mobi,azw3}"},
}

type classStat struct {
	Files int
	Bytes int64
}

// Reporter scans configured roots and emits a Markdown snapshot.
type Reporter struct {
	ScanRoots []string
	OutDir    string
	Logger    *slog.Logger
	Now       func() time.Time
}

// Write scans every root and writes inventory.md under OutDir, returning
// the snapshot path.
func (r *Reporter) Write(ctx context.Context) (string, error) {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Inventory snapshot\n\nGenerated: %s\n", now().UTC().Format(time.RFC3339))

	for _, root := range r.ScanRoots {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		stats, err := scanRoot(root)
		if err != nil {
			// A missing or unreadable root is reported in the snapshot,
			// not fatal for the run.
			fmt.Fprintf(&b, "\n## %s\n\nunavailable: %v\n", root, err)
			if r.Logger != nil {
				r.Logger.Warn("inventory scan failed", "root", root, "error", err)
			}
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n| Class | Files | Size |\n|---|---:|---:|\n", root)
		for _, c := range classes {
			s := stats[c.Name]
			fmt.Fprintf(&b, "| %s | %d | %s |\n", c.Name, s.Files, humanBytes(s.Bytes))
		}
	}

	outPath := filepath.Join(r.OutDir, "inventory.md")
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if r.Logger != nil {
		r.Logger.Info("inventory snapshot written", "path", outPath)
	}
	return outPath, nil
}

func scanRoot(root string) (map[string]classStat, error) {
	stats := make(map[string]classStat, len(classes))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("rel path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		for _, c := range classes {
			matched, err := doublestar.Match(c.Pattern, rel)
			if err != nil || !matched {
				continue
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			s := stats[c.Name]
			s.Files++
			s.Bytes += info.Size()
			stats[c.Name] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ClassNames returns the snapshot classes sorted by name; tests use it
// to avoid duplicating the table layout.
func ClassNames() []string {
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// RunReportCommand invokes the external inventory-report executable with
// no arguments. Its output is opaque to this system; failure is returned
// for logging but should not fail the pipeline.
func RunReportCommand(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("report command not found: %w", err)
	}
	cmd := exec.CommandContext(ctx, command)
	cmd.WaitDelay = 5 * time.Second
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("report command failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
