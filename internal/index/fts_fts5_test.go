//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files_fts`).Scan(&count); err != nil {
		t.Fatalf("files_fts table missing: %v", err)
	}
}

func TestFTS5_MatchFiles(t *testing.T) {
	db := testDB(t)
	row := FileRow{
		Path:      "pkg/server.go",
		Checksum:  "f1",
		Lang:      "go",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertFile(row, "package pkg\n\nfunc powerful() {}\n", nil); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	paths, err := db.MatchFiles("powerful", 10)
	if err != nil {
		t.Fatalf("MatchFiles: %v", err)
	}
	if len(paths) != 1 || paths[0] != "pkg/server.go" {
		t.Fatalf("paths = %v, want [pkg/server.go]", paths)
	}
}

func TestFTS5_PunctuationQueryIsLiteral(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "a.go", Checksum: "1", Lang: "go", UpdatedAt: time.Now()},
		"if err != nil {\n", nil)

	// Operator characters in the query must not be parsed as FTS syntax.
	paths, err := db.MatchFiles(`err != nil`, 10)
	if err != nil {
		t.Fatalf("MatchFiles: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("paths = %v, want one hit", paths)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(FileRow{Path: "gone.go", Checksum: "g", Lang: "go", UpdatedAt: time.Now()}, "vanishing content", nil)
	_ = db.DeleteFile("gone.go")

	paths, _ := db.MatchFiles("vanishing", 10)
	for _, p := range paths {
		if p == "gone.go" {
			t.Error("deleted file still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertFile(FileRow{Path: "evo.go", Checksum: "1", Lang: "go", UpdatedAt: now}, "original text", nil)
	_ = db.UpsertFile(FileRow{Path: "evo.go", Checksum: "2", Lang: "go", UpdatedAt: now}, "replacement text", nil)

	paths, _ := db.MatchFiles("original", 10)
	if len(paths) != 0 {
		t.Error("old FTS content should be gone")
	}
	paths, _ = db.MatchFiles("replacement", 10)
	if len(paths) != 1 {
		t.Errorf("FTS not updated: %v", paths)
	}
}
