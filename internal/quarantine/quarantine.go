// Package quarantine manages the batch lifecycle: staging files are
// sealed into an immutable timestamped batch directory, consulted by
// promotion, and finally moved wholesale into the archive root.
package quarantine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BatchPrefix names quarantine batch directories; the timestamp suffix is
// zero-padded so lexicographic order equals creation order.
const BatchPrefix = "_quarantine_"

const timestampLayout = "20060102-150405"

// ErrEmptyBatch reports that sealing found nothing to move. Callers must
// stop the pipeline without attempting promotion.
var ErrEmptyBatch = errors.New("no files in staging to quarantine")

// ErrNoBatches reports that neither staging nor archive holds a batch.
var ErrNoBatches = errors.New("no quarantine batches found")

// ErrArchiveFailed wraps any failure to retire a batch into the archive
// root. Callers treat it as fatal for the run.
var ErrArchiveFailed = errors.New("archive batch")

// Seal moves every direct-child regular file of stagingDir into a new
// batch directory named by the current time, created under the staging
// area itself so Newest can find it.
func Seal(stagingDir string, now time.Time) (string, error) {
	dirents, err := os.ReadDir(stagingDir)
	if err != nil {
		return "", fmt.Errorf("read staging dir: %w", err)
	}

	var files []string
	for _, de := range dirents {
		// Subdirectories (including older batches) are left untouched.
		if !de.Type().IsRegular() {
			continue
		}
		files = append(files, de.Name())
	}
	if len(files) == 0 {
		return "", ErrEmptyBatch
	}

	batchDir := filepath.Join(stagingDir, BatchPrefix+now.Format(timestampLayout))
	// Second-precision names can collide; that is a clean failure, not
	// retried with a suffix.
	if err := os.Mkdir(batchDir, 0o755); err != nil {
		return "", fmt.Errorf("create batch dir: %w", err)
	}

	for _, name := range files {
		src := filepath.Join(stagingDir, name)
		if err := os.Rename(src, filepath.Join(batchDir, name)); err != nil {
			return "", fmt.Errorf("move %s into batch: %w", name, err)
		}
	}

	return batchDir, nil
}

// Newest returns the most recently created batch directory, preferring
// pending batches under the staging area and falling back to the archive
// root when none are pending.
func Newest(stagingDir string, archiveDir string) (string, error) {
	if batch, ok, err := newestIn(stagingDir); err != nil {
		return "", err
	} else if ok {
		return batch, nil
	}

	if batch, ok, err := newestIn(archiveDir); err != nil {
		return "", err
	} else if ok {
		return batch, nil
	}

	return "", ErrNoBatches
}

func newestIn(dir string) (string, bool, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", dir, err)
	}

	var batches []string
	for _, de := range dirents {
		if de.IsDir() && strings.HasPrefix(de.Name(), BatchPrefix) {
			batches = append(batches, de.Name())
		}
	}
	if len(batches) == 0 {
		return "", false, nil
	}

	// Zero-padded timestamps make lexicographic order chronological.
	sort.Strings(batches)
	return filepath.Join(dir, batches[len(batches)-1]), true, nil
}

// Archive moves the batch directory, preserving its name, into the
// archive root. Callers treat any failure as fatal for the run.
func Archive(batchDir string, archiveDir string) (string, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create archive dir: %v", ErrArchiveFailed, err)
	}

	dest := filepath.Join(archiveDir, filepath.Base(batchDir))
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("%w: destination already exists: %s", ErrArchiveFailed, dest)
	}
	if err := os.Rename(batchDir, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}
	return dest, nil
}
