// Package manifest reads the tab-separated download manifest that drives
// the fetch and promotion steps. Columns: destination relative path,
// source URL, free-form note.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// Entry is one valid manifest row. RelPath is relative to the permanent
// tree root and always slash-separated in the manifest itself.
type Entry struct {
	RelPath string
	URL     string
	Note    string
}

// Filename is the final path segment of the destination, which is also
// the name the fetched file carries in staging and quarantine.
func (e Entry) Filename() string {
	return path.Base(e.RelPath)
}

// DestDir is every segment of the destination except the last, or "" for
// a top-level entry.
func (e Entry) DestDir() string {
	dir := path.Dir(e.RelPath)
	if dir == "." {
		return ""
	}
	return dir
}

// Read parses the manifest at path. Blank lines and comment lines
// starting with '#' are ignored. Rows whose destination column is empty
// are dropped without error; the skipped count is returned so callers can
// at least log that something was discarded. URL well-formedness is not
// checked here, that is the fetcher's problem.
func Read(manifestPath string) ([]Entry, int, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	var skipped int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		entry, ok := parseRow(line)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan manifest: %w", err)
	}

	return entries, skipped, nil
}

func parseRow(line string) (Entry, bool) {
	fields := strings.Split(line, "\t")
	relPath := strings.TrimSpace(fields[0])
	if relPath == "" {
		return Entry{}, false
	}

	entry := Entry{RelPath: path.Clean(relPath)}
	if len(fields) > 1 {
		entry.URL = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		entry.Note = strings.TrimSpace(fields[2])
	}
	return entry, true
}
