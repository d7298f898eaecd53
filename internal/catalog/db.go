package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema drops and recreates all tables. The catalog is rebuilt from
// scratch on each reindex so there is no need for migrations.
const schema = `
DROP TRIGGER IF EXISTS works_au;
DROP TRIGGER IF EXISTS works_ad;
DROP TRIGGER IF EXISTS works_ai;
DROP TABLE IF EXISTS works_fts;
DROP TABLE IF EXISTS works;

CREATE TABLE works (
	path TEXT PRIMARY KEY,
	work TEXT NOT NULL,
	corpus TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL
);

CREATE VIRTUAL TABLE works_fts USING fts5(
	work, content,
	content='works',
	content_rowid='rowid'
);

CREATE TRIGGER works_ai AFTER INSERT ON works BEGIN
	INSERT INTO works_fts(rowid, work, content)
	VALUES (new.rowid, new.work, new.content);
END;

CREATE TRIGGER works_ad AFTER DELETE ON works BEGIN
	INSERT INTO works_fts(works_fts, rowid, work, content)
	VALUES ('delete', old.rowid, old.work, old.content);
END;

CREATE TRIGGER works_au AFTER UPDATE ON works BEGIN
	INSERT INTO works_fts(works_fts, rowid, work, content)
	VALUES ('delete', old.rowid, old.work, old.content);
	INSERT INTO works_fts(rowid, work, content)
	VALUES (new.rowid, new.work, new.content);
END;
`

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
