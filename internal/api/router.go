package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/viewservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *viewservice.Service, idx index.WorkspaceIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, idx)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// View binding.
	r.Get("/view", h.GetView)
	r.Post("/view", h.BindView)

	// Tree traversal.
	r.Get("/tree", h.Tree)
	r.Get("/tree/item", h.TreeItem)
	r.Get("/tree/parent", h.TreeParent)

	// Index queries.
	r.Get("/search", h.Search)
	r.Get("/symbols", h.Symbols)

	// Navigation history.
	r.Get("/history/visits", h.ListHistory)
	r.Post("/history/visits", h.RecordVisit)
	r.Delete("/history/visits", h.ClearHistory)

	// Read-only source bodies.
	r.Get("/files/*", h.GetFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
