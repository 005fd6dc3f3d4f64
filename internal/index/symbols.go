package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/raido/internal/models"
)

const symbolColumns = `id, path, name, kind, detail, start_line, start_col, end_line, end_col`

func scanSymbol(rows *sql.Rows) (models.Symbol, error) {
	var s models.Symbol
	var kind string
	err := rows.Scan(&s.ID, &s.Loc.Path, &s.Name, &kind, &s.Detail,
		&s.Loc.Range.Start.Line, &s.Loc.Range.Start.Column,
		&s.Loc.Range.End.Line, &s.Loc.Range.End.Column)
	s.Kind = models.SymbolKind(kind)
	return s, err
}

func collectSymbols(rows *sql.Rows) ([]models.Symbol, error) {
	defer rows.Close()
	var out []models.Symbol
	for rows.Next() {
		s, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SymbolsNamed returns every indexed definition with the given name,
// ordered by path then line. Method symbols match on either the bare
// name or the "Receiver.Name" form.
func (db *DB) SymbolsNamed(name string) ([]models.Symbol, error) {
	rows, err := db.conn.Query(`
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE name = ? OR name LIKE '%.' || ?
		ORDER BY path, start_line
	`, name, name)
	if err != nil {
		return nil, fmt.Errorf("index: symbols named: %w", err)
	}
	return collectSymbols(rows)
}

// Symbols returns indexed definitions matching a LIKE pattern (or all when
// the pattern is empty), capped at limit.
func (db *DB) Symbols(pattern string, limit int) ([]models.Symbol, error) {
	if limit <= 0 {
		limit = 100
	}
	if pattern == "" {
		pattern = "%"
	} else {
		pattern = "%" + pattern + "%"
	}
	rows, err := db.conn.Query(`
		SELECT `+symbolColumns+`
		FROM symbols
		WHERE name LIKE ?
		ORDER BY path, start_line
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("index: symbols: %w", err)
	}
	return collectSymbols(rows)
}

// CalleesOf returns the recorded call sites inside the symbol with the
// given id, in source order.
func (db *DB) CalleesOf(symbolID int64) ([]models.CallSite, error) {
	rows, err := db.conn.Query(`
		SELECT callee, line, col
		FROM calls
		WHERE caller_id = ?
		ORDER BY line, col
	`, symbolID)
	if err != nil {
		return nil, fmt.Errorf("index: callees: %w", err)
	}
	defer rows.Close()
	var out []models.CallSite
	for rows.Next() {
		var c models.CallSite
		if err := rows.Scan(&c.Callee, &c.Pos.Line, &c.Pos.Column); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CallersOf returns the symbols whose bodies contain a call to name,
// ordered by path then line. A caller appears once even when it calls
// name several times.
func (db *DB) CallersOf(name string) ([]models.Symbol, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT s.id, s.path, s.name, s.kind, s.detail,
		       s.start_line, s.start_col, s.end_line, s.end_col
		FROM symbols s
		JOIN calls c ON c.caller_id = s.id
		WHERE c.callee = ?
		ORDER BY s.path, s.start_line
	`, bareName(name))
	if err != nil {
		return nil, fmt.Errorf("index: callers: %w", err)
	}
	return collectSymbols(rows)
}

// bareName strips a "Receiver." prefix so method symbols can be looked up
// by the name that appears at call sites.
func bareName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
