package api

import (
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/viewservice"
)

// BindViewRequest is the request body for switching the tree view.
type BindViewRequest struct {
	Mode      string `json:"mode" example:"search" validate:"required"`
	Query     string `json:"query,omitempty" example:"TODO"`
	Symbol    string `json:"symbol,omitempty" example:"ServeHTTP"`
	Direction string `json:"direction,omitempty" example:"outgoing"`
}

// ViewState is the current binding descriptor (aliased from the domain layer).
type ViewState = viewservice.ViewState

// TreeItem is a rendered tree node (aliased from the domain layer).
type TreeItem = viewservice.TreeItem

// TreeResponse wraps a level of the tree.
type TreeResponse struct {
	Items []TreeItem `json:"items" validate:"required"`
}

// VisitRequest is the request body for recording a navigation.
type VisitRequest struct {
	Label       string          `json:"label" example:"ServeHTTP" validate:"required"`
	Description string          `json:"description,omitempty" example:"internal/api/router.go"`
	Target      models.Location `json:"target" validate:"required"`
}

// HistoryResponse wraps the visit log, most recent first.
type HistoryResponse struct {
	Visits []models.Visit `json:"visits" validate:"required"`
}

// SearchHit is a single matching file in the API response.
type SearchHit struct {
	Path string `json:"path" example:"internal/api/router.go" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
}

// SymbolsResponse wraps a symbol listing.
type SymbolsResponse struct {
	Symbols []models.Symbol `json:"symbols" validate:"required"`
}

// FileResponse is the stored body of one indexed file.
type FileResponse struct {
	Path string `json:"path" example:"internal/api/router.go" validate:"required"`
	Body string `json:"body" validate:"required"`
}
