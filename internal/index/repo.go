package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/scan"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Checksum  string
	Lang      string
	UpdatedAt time.Time
}

// UpsertFile replaces a file's row, its FTS entry, and its symbols and
// call sites within a transaction.
func (db *DB) UpsertFile(row FileRow, body string, symbols []scan.SymbolInfo) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, lang, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			lang       = excluded.lang,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Path, row.Checksum, row.Lang, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, body); err != nil {
		return err
	}

	// Replace symbols: delete old then bulk insert (calls cascade).
	if _, err := tx.Exec(`DELETE FROM symbols WHERE path = ?`, row.Path); err != nil {
		return fmt.Errorf("index: clear symbols: %w", err)
	}

	symStmt, err := tx.Prepare(`
		INSERT INTO symbols (path, name, kind, detail, start_line, start_col, end_line, end_col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare symbol insert: %w", err)
	}
	defer symStmt.Close()

	callStmt, err := tx.Prepare(`INSERT INTO calls (caller_id, callee, line, col) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare call insert: %w", err)
	}
	defer callStmt.Close()

	for _, info := range symbols {
		s := info.Symbol
		res, err := symStmt.Exec(row.Path, s.Name, string(s.Kind), s.Detail,
			s.Loc.Range.Start.Line, s.Loc.Range.Start.Column,
			s.Loc.Range.End.Line, s.Loc.Range.End.Column)
		if err != nil {
			return fmt.Errorf("index: insert symbol: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("index: symbol id: %w", err)
		}
		for _, c := range info.Calls {
			if _, err := callStmt.Exec(id, c.Callee, c.Pos.Line, c.Pos.Column); err != nil {
				return fmt.Errorf("index: insert call: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file, its FTS entry, symbols, and call sites.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM symbols WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// FileBody returns the stored body of an indexed file.
func (db *DB) FileBody(path string) (string, error) {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM files WHERE path = ?`, path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("index: file %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("index: file body: %w", err)
	}
	return body, nil
}
