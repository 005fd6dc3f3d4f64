package index

import (
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/scan"
)

// WorkspaceIndex defines the interface for index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type WorkspaceIndex interface {
	UpsertFile(row FileRow, body string, symbols []scan.SymbolInfo) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	FileBody(path string) (string, error)
	MatchFiles(query string, limit int) ([]string, error)
	SymbolsNamed(name string) ([]models.Symbol, error)
	Symbols(pattern string, limit int) ([]models.Symbol, error)
	CallersOf(name string) ([]models.Symbol, error)
	CalleesOf(symbolID int64) ([]models.CallSite, error)
	InsertVisit(v models.Visit, limit int) (int64, error)
	ListVisits(limit int) ([]models.Visit, error)
	ClearVisits() error
	Close() error
}

// Verify *DB satisfies WorkspaceIndex at compile time.
var _ WorkspaceIndex = (*DB)(nil)
