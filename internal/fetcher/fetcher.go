// Package fetcher retrieves manifest-listed resources into the staging
// directory. Staging files may be overwritten freely; write-once semantics
// only apply once a file has been promoted into the permanent tree.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mbrus062/bookshelf-operator/internal/manifest"
)

// Downloader retrieves a single remote resource to a local path.
type Downloader interface {
	Fetch(ctx context.Context, url string, destPath string) error
}

const (
	defaultAttempts   = 3
	defaultRetryDelay = 2 * time.Second
)

// HTTPDownloader fetches over HTTP(S) with a bounded retry loop and a
// fixed delay between attempts. Redirects are followed by the client.
type HTTPDownloader struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		Client:   &http.Client{Timeout: 10 * time.Minute},
		Attempts: defaultAttempts,
		Delay:    defaultRetryDelay,
	}
}

func (d *HTTPDownloader) Fetch(ctx context.Context, url string, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	attempts := d.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			if d.Logger != nil {
				d.Logger.Warn("retrying download", "url", url, "attempt", attempt+1, "error", lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.Delay):
			}
		}

		lastErr = d.fetchOnce(ctx, url, destPath)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

func (d *HTTPDownloader) fetchOnce(ctx context.Context, url string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download: status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write file: %w", err)
	}
	_ = tmp.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Result summarizes one FetchAll pass.
type Result struct {
	Fetched int
	Failed  []manifest.Entry
}

// FetchAll downloads every manifest entry with a URL into stagingDir,
// named by the entry's filename. Per-item failures are logged and
// skipped; they never abort the batch.
func FetchAll(ctx context.Context, d Downloader, entries []manifest.Entry, stagingDir string, logger *slog.Logger) (Result, error) {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create staging dir: %w", err)
	}

	var res Result
	for _, entry := range entries {
		if entry.URL == "" {
			continue
		}
		destPath := filepath.Join(stagingDir, entry.Filename())
		if logger != nil {
			logger.Info("fetching", "url", entry.URL, "dest", destPath)
		}
		if err := d.Fetch(ctx, entry.URL, destPath); err != nil {
			if logger != nil {
				logger.Warn("fetch failed", "url", entry.URL, "error", err)
			}
			res.Failed = append(res.Failed, entry)
			continue
		}
		res.Fetched++
	}
	return res, nil
}
