package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Result struct {
	Work     string `json:"work"`
	Path     string `json:"path"`
	Corpus   string `json:"corpus"`
	Language string `json:"language"`
}

type SearchResponse struct {
	Total   uint64   `json:"total"`
	Results []Result `json:"results"`
}

type SQLiteSearcher struct {
	db *sql.DB
}

func NewSQLiteSearcher(path string) (*SQLiteSearcher, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteSearcher{db: db}, nil
}

func (s *SQLiteSearcher) Close() error {
	return s.db.Close()
}

func (s *SQLiteSearcher) Search(ctx context.Context, queryString string, corpus string, limit int, offset int) (SearchResponse, error) {
	queryString = sanitizeQuery(queryString)
	if queryString == "" {
		return SearchResponse{}, nil
	}
	if limit <= 0 {
		limit = 25
	}

	query := `SELECT w.work, w.path, w.corpus, w.language, COUNT(*) OVER() AS total
		 FROM works_fts f
		 JOIN works w ON w.rowid = f.rowid
		 WHERE works_fts MATCH ?`
	args := []any{queryString}

	if corpus != "" {
		query += ` AND w.corpus = ?`
		args = append(args, corpus)
	}

	query += ` ORDER BY f.rank LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var resp SearchResponse
	resp.Results = make([]Result, 0)

	for rows.Next() {
		var r Result
		var total uint64
		if err := rows.Scan(&r.Work, &r.Path, &r.Corpus, &r.Language, &total); err != nil {
			return SearchResponse{}, fmt.Errorf("scan result: %w", err)
		}
		resp.Total = total
		resp.Results = append(resp.Results, r)
	}
	if err := rows.Err(); err != nil {
		return SearchResponse{}, fmt.Errorf("iterate results: %w", err)
	}

	return resp, nil
}

// sanitizeQuery reduces operator input to quoted prefix terms so FTS5
// syntax characters in pasted titles cannot break the MATCH expression.
func sanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	q = strings.TrimSpace(b.String())
	if q == "" {
		return ""
	}

	terms := strings.Fields(q)
	var filtered []string
	for _, t := range terms {
		upper := strings.ToUpper(t)
		if upper == "AND" || upper == "OR" || upper == "NOT" {
			continue
		}
		filtered = append(filtered, `"`+t+`"`+"*")
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, " ")
}
