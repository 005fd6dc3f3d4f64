//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; candidate matching uses LIKE on files.body.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _ string) error {
	// Body is already stored in the files table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// MatchFiles returns the paths of files whose body contains query,
// ordered by path (LIKE fallback when FTS5 is not compiled in).
func (db *DB) MatchFiles(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path
		FROM files
		WHERE body LIKE ?
		ORDER BY path
		LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: match files: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
