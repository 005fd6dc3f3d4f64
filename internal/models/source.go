// Package models defines the domain types for Raido.
package models

import "time"

// FileMetadata is a lightweight representation returned by workspace listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Position is a 1-based line/column pair within a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans from Start to End (inclusive start, exclusive end column).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location pins a range to a workspace-relative file path.
type Location struct {
	Path  string `json:"path"`
	Range Range  `json:"range"`
}

// SymbolKind classifies an indexed symbol.
type SymbolKind string

const (
	KindPackage   SymbolKind = "package"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindConstant  SymbolKind = "constant"
	KindVariable  SymbolKind = "variable"
	// KindUnknown marks call targets with no indexed definition.
	KindUnknown SymbolKind = "unknown"
)

// Symbol is one indexed definition in the workspace.
type Symbol struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Kind   SymbolKind `json:"kind"`
	Detail string     `json:"detail,omitempty"`
	Loc    Location   `json:"location"`
}

// CallSite records one call expression inside a symbol's body.
// Callee is a bare name; resolution against indexed definitions
// happens at query time.
type CallSite struct {
	Callee string   `json:"callee"`
	Pos    Position `json:"position"`
}

// Visit is one navigation-history record.
type Visit struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Target      Location  `json:"target"`
	VisitedAt   time.Time `json:"visited_at"`
}
