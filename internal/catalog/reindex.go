package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Reindex rebuilds the catalog from every .txt file under root. The work
// name is the file's stem, the corpus is the top-level directory segment,
// and provenance header lines are stripped from the indexed content.
func Reindex(ctx context.Context, root string, indexer Indexer, logger *slog.Logger) (int, error) {
	var indexed int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txt") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("rel path: %w", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read work: %w", err)
		}

		doc := Document{
			Work:    strings.TrimSuffix(d.Name(), ".txt"),
			Path:    filepath.ToSlash(rel),
			Corpus:  corpusFor(rel),
			Content: stripHeader(string(raw)),
		}
		if err := indexer.IndexWork(ctx, doc); err != nil {
			return err
		}
		indexed++
		if logger != nil {
			logger.Debug("indexed", "path", doc.Path, "corpus", doc.Corpus)
		}
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("walk tree: %w", err)
	}
	return indexed, nil
}

// corpusFor takes the leading directory segment of a tree-relative path.
func corpusFor(rel string) string {
	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx > 0 {
		return rel[:idx]
	}
	return ""
}

// stripHeader drops the leading block of '#' comment lines (and the
// blank line ending it) that the extractor prepends.
func stripHeader(content string) string {
	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) && strings.HasPrefix(lines[i], "#") {
		i++
	}
	if i > 0 && i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return strings.Join(lines[i:], "\n")
}
