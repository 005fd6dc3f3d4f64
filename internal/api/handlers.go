package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/calls"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/viewservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *viewservice.Service
	idx index.WorkspaceIndex
}

// NewHandler creates a new Handler.
func NewHandler(svc *viewservice.Service, idx index.WorkspaceIndex) *Handler {
	return &Handler{svc: svc, idx: idx}
}

// filePath extracts the file path from the URL (everything after /api/files/).
// Supports encoded slashes from OpenAPI clients (e.g. internal%2Fapi%2Frouter.go).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetView handles GET /api/view.
//
//	@Summary		Describe the current tree binding
//	@Tags			view
//	@Produce		json
//	@Success		200	{object}	ViewState
//	@Security		BearerAuth
//	@Router			/view [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// BindView handles POST /api/view.
//
//	@Summary		Switch the tree to a different model
//	@Tags			view
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BindViewRequest	true	"Mode to bind"
//	@Success		200		{object}	ViewState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/view [post]
func (h *Handler) BindView(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req BindViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	var err error
	switch req.Mode {
	case viewservice.ModeSearch:
		err = h.svc.BindSearch(req.Query)
	case viewservice.ModeCalls:
		err = h.svc.BindCalls(req.Symbol, calls.Direction(req.Direction))
	case viewservice.ModeHistory:
		err = h.svc.BindHistory()
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("mode must be search, calls or history"))
		return
	}
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("bind view failed", slog.String("mode", req.Mode), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Tree handles GET /api/tree.
//
//	@Summary		List children of a tree node (roots when parent is omitted)
//	@Tags			tree
//	@Produce		json
//	@Param			parent	query		string	false	"Parent node ref"
//	@Success		200		{object}	TreeResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Children(r.Context(), r.URL.Query().Get("parent"))
	if err != nil {
		slog.Error("tree children failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// TreeItem handles GET /api/tree/item.
//
//	@Summary		Render a single tree node
//	@Tags			tree
//	@Produce		json
//	@Param			ref	query		string	true	"Node ref"
//	@Success		200	{object}	TreeItem
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tree/item [get]
func (h *Handler) TreeItem(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'ref' is required"))
		return
	}
	item, err := h.svc.Item(ref)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// TreeParent handles GET /api/tree/parent.
//
//	@Summary		Render the parent of a tree node
//	@Tags			tree
//	@Produce		json
//	@Param			ref	query		string	true	"Node ref"
//	@Success		200	{object}	TreeItem
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tree/parent [get]
func (h *Handler) TreeParent(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'ref' is required"))
		return
	}
	item, err := h.svc.Parent(ref)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if item == nil {
		// Root node; there is no parent to render.
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across indexed files
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	paths, err := h.idx.MatchFiles(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchHit, len(paths))
	for i, p := range paths {
		results[i] = SearchHit{Path: p}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Symbols handles GET /api/symbols.
//
//	@Summary		List indexed symbols matching a name pattern
//	@Tags			symbols
//	@Produce		json
//	@Param			q		query		string	false	"Name pattern (substring)"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SymbolsResponse
//	@Security		BearerAuth
//	@Router			/symbols [get]
func (h *Handler) Symbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	syms, err := h.idx.Symbols(q, limit)
	if err != nil {
		slog.Error("symbols failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": syms})
}

// ListHistory handles GET /api/history/visits.
//
//	@Summary		List recorded navigations, most recent first
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history/visits [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.History()
	if err != nil {
		slog.Error("list history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"visits": visits})
}

// RecordVisit handles POST /api/history/visits.
//
//	@Summary		Record a navigation
//	@Tags			history
//	@Accept			json
//	@Param			body	body	VisitRequest	true	"Visit to record"
//	@Success		201		"Visit recorded"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/visits [post]
func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Label == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("label is required"))
		return
	}
	err := h.svc.RecordVisit(models.Visit{
		Label:       req.Label,
		Description: req.Description,
		Target:      req.Target,
	})
	if err != nil {
		slog.Error("record visit failed", slog.String("label", req.Label), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ClearHistory handles DELETE /api/history/visits.
//
//	@Summary		Clear the navigation history
//	@Tags			history
//	@Success		204	"History cleared"
//	@Security		BearerAuth
//	@Router			/history/visits [delete]
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(); err != nil {
		slog.Error("clear history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFile handles GET /api/files/*.
//
//	@Summary		Read the indexed body of a workspace file
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"File path"
//	@Success		200		{object}	FileResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := h.idx.FileBody(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get file failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, FileResponse{Path: path, Body: body})
}
