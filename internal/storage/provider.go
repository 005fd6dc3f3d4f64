// Package storage defines the read-only workspace file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for workspace file access. Raido only ever
// observes the workspace; there is deliberately no write surface.
type Provider interface {
	// List returns metadata for every indexable file under dir
	// (relative to the workspace root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// workspace root).
	Read(path string) ([]byte, error)
	// Indexable reports whether a workspace-relative path is covered by
	// the extension filter and not excluded by ignore rules.
	Indexable(path string) bool
}
