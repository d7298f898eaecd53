// Package catalog maintains the SQLite FTS index over the permanent
// tree, so the corpus can be searched without walking the filesystem.
package catalog

import "context"

// Indexer abstracts catalog writes so reindexing does not depend on a
// specific backend.
type Indexer interface {
	IndexWork(ctx context.Context, doc Document) error
	Close() error
}

// Document is one work to be indexed.
type Document struct {
	Work     string
	Path     string
	Corpus   string
	Language string
	Content  string
}
