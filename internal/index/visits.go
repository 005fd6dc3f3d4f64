package index

import (
	"fmt"

	"github.com/starford/raido/internal/models"
)

// InsertVisit appends a navigation-history record and trims the table to
// keep at most limit rows (oldest first). limit <= 0 disables trimming.
func (db *DB) InsertVisit(v models.Visit, limit int) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		INSERT INTO visits (label, description, path, line, col, visited_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.Label, v.Description, v.Target.Path,
		v.Target.Range.Start.Line, v.Target.Range.Start.Column, v.VisitedAt)
	if err != nil {
		return 0, fmt.Errorf("index: insert visit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("index: visit id: %w", err)
	}

	if limit > 0 {
		_, err = tx.Exec(`
			DELETE FROM visits
			WHERE id NOT IN (SELECT id FROM visits ORDER BY id DESC LIMIT ?)
		`, limit)
		if err != nil {
			return 0, fmt.Errorf("index: trim visits: %w", err)
		}
	}

	return id, tx.Commit()
}

// ListVisits returns visits most recent first, capped at limit.
func (db *DB) ListVisits(limit int) ([]models.Visit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(`
		SELECT id, label, description, path, line, col, visited_at
		FROM visits
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: list visits: %w", err)
	}
	defer rows.Close()

	var out []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.Label, &v.Description,
			&v.Target.Path, &v.Target.Range.Start.Line, &v.Target.Range.Start.Column,
			&v.VisitedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ClearVisits removes every navigation-history record.
func (db *DB) ClearVisits() error {
	if _, err := db.conn.Exec(`DELETE FROM visits`); err != nil {
		return fmt.Errorf("index: clear visits: %w", err)
	}
	return nil
}
