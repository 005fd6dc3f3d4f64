package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/viewservice"
)

// testEnv indexes a small workspace and mounts the router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*viewservice.Service, http.Handler) {
	t.Helper()

	wsDir := t.TempDir()
	files := map[string]string{
		"alpha.go": "package alpha\n\n// needle one\nfunc Helper() {}\n\nfunc Entry() {\n\tHelper()\n}\n",
		"beta.txt": "needle two\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(wsDir, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(wsDir, []string{".go", ".txt"})
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "raido-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	svc := viewservice.New(db, history.New(db, 10), 100)
	t.Cleanup(svc.Close)

	router := NewRouter(svc, db, authToken != "", authToken, nil)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestGetView_InitiallyUnbound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/view", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state ViewState
	decode(t, w, &state)
	if state.Mode != viewservice.ModeNone {
		t.Errorf("mode = %q, want none", state.Mode)
	}
}

func TestBindSearchAndWalkTree(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "search", Query: "needle"})
	if w.Code != http.StatusOK {
		t.Fatalf("bind = %d, body = %s", w.Code, w.Body.String())
	}
	var state ViewState
	decode(t, w, &state)
	if state.Mode != "search" || state.Query != "needle" {
		t.Errorf("state = %+v", state)
	}

	// Roots are the matching files, path ordered.
	w = do(t, router, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tree = %d", w.Code)
	}
	var tr TreeResponse
	decode(t, w, &tr)
	if len(tr.Items) != 2 {
		t.Fatalf("roots = %d, want 2", len(tr.Items))
	}
	if tr.Items[0].Label != "alpha.go" || tr.Items[1].Label != "beta.txt" {
		t.Errorf("roots = %q, %q", tr.Items[0].Label, tr.Items[1].Label)
	}
	if !tr.Items[0].Expandable {
		t.Error("file groups should be expandable")
	}

	// Children of the first group are its matches.
	w = do(t, router, http.MethodGet, "/tree?parent="+tr.Items[0].Ref, nil)
	var kids TreeResponse
	decode(t, w, &kids)
	if len(kids.Items) != 1 {
		t.Fatalf("alpha.go matches = %d, want 1", len(kids.Items))
	}
	match := kids.Items[0]
	if match.Label != "// needle one" {
		t.Errorf("match label = %q", match.Label)
	}
	if len(match.Highlights) != 1 || match.Highlights[0].Start != 3 || match.Highlights[0].End != 9 {
		t.Errorf("highlights = %+v", match.Highlights)
	}
	if match.Target == nil || match.Target.Path != "alpha.go" || match.Target.Range.Start.Line != 3 {
		t.Errorf("target = %+v", match.Target)
	}

	// Parent walks back to the file group.
	w = do(t, router, http.MethodGet, "/tree/parent?ref="+match.Ref, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("parent = %d", w.Code)
	}
	var parent TreeItem
	decode(t, w, &parent)
	if parent.Ref != tr.Items[0].Ref {
		t.Errorf("parent ref = %q, want %q", parent.Ref, tr.Items[0].Ref)
	}

	// Item renders a single node.
	w = do(t, router, http.MethodGet, "/tree/item?ref="+match.Ref, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("item = %d", w.Code)
	}
}

func TestBindCallsAndExpand(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "calls", Symbol: "Entry"})
	if w.Code != http.StatusOK {
		t.Fatalf("bind = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/tree", nil)
	var tr TreeResponse
	decode(t, w, &tr)
	if len(tr.Items) != 1 || tr.Items[0].Label != "Entry" {
		t.Fatalf("roots = %+v, want [Entry]", tr.Items)
	}

	w = do(t, router, http.MethodGet, "/tree?parent="+tr.Items[0].Ref, nil)
	var kids TreeResponse
	decode(t, w, &kids)
	if len(kids.Items) != 1 || kids.Items[0].Label != "Helper" {
		t.Errorf("Entry calls = %+v, want [Helper]", kids.Items)
	}
}

func TestBindView_InvalidRequests(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "bogus"}); w.Code != http.StatusBadRequest {
		t.Errorf("bogus mode = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "search"}); w.Code != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "calls"}); w.Code != http.StatusBadRequest {
		t.Errorf("empty symbol = %d, want 400", w.Code)
	}
}

func TestRebind_InvalidatesRefs(t *testing.T) {
	_, router := testEnv(t, "")

	do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "search", Query: "needle"})
	w := do(t, router, http.MethodGet, "/tree", nil)
	var tr TreeResponse
	decode(t, w, &tr)
	staleRef := tr.Items[0].Ref

	do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "history"})

	// Stale refs answer empty, not an error.
	w = do(t, router, http.MethodGet, "/tree?parent="+staleRef, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stale ref = %d, want 200", w.Code)
	}
	var kids TreeResponse
	decode(t, w, &kids)
	if len(kids.Items) != 0 {
		t.Errorf("stale ref children = %d, want 0", len(kids.Items))
	}

	if w := do(t, router, http.MethodGet, "/tree/item?ref="+staleRef, nil); w.Code != http.StatusNotFound {
		t.Errorf("stale item = %d, want 404", w.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	visit := VisitRequest{Label: "Entry", Description: "alpha.go"}
	visit.Target.Path = "alpha.go"
	visit.Target.Range.Start.Line = 6
	if w := do(t, router, http.MethodPost, "/history/visits", visit); w.Code != http.StatusCreated {
		t.Fatalf("record = %d", w.Code)
	}

	w := do(t, router, http.MethodGet, "/history/visits", nil)
	var resp map[string]any
	decode(t, w, &resp)
	visits := resp["visits"].([]any)
	if len(visits) != 1 {
		t.Fatalf("visits = %d, want 1", len(visits))
	}

	// A bound history view shows the entry.
	do(t, router, http.MethodPost, "/view", BindViewRequest{Mode: "history"})
	w = do(t, router, http.MethodGet, "/tree", nil)
	var tr TreeResponse
	decode(t, w, &tr)
	if len(tr.Items) != 1 || tr.Items[0].Label != "Entry" {
		t.Errorf("history roots = %+v", tr.Items)
	}
	if tr.Items[0].Expandable {
		t.Error("history entries should not be expandable")
	}

	if w := do(t, router, http.MethodDelete, "/history/visits", nil); w.Code != http.StatusNoContent {
		t.Errorf("clear = %d, want 204", w.Code)
	}
	w = do(t, router, http.MethodGet, "/history/visits", nil)
	decode(t, w, &resp)
	if visits, ok := resp["visits"].([]any); ok && len(visits) != 0 {
		t.Errorf("visits after clear = %d, want 0", len(visits))
	}
}

func TestRecordVisit_RequiresLabel(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodPost, "/history/visits", VisitRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing label = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/search?q=needle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	decode(t, w, &resp)
	results := resp["results"].([]any)
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/symbols?q=Help", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("symbols = %d", w.Code)
	}
	var resp map[string]any
	decode(t, w, &resp)
	syms := resp["symbols"].([]any)
	if len(syms) != 1 {
		t.Errorf("symbols = %d, want 1 (Helper)", len(syms))
	}
}

func TestGetFile(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/files/alpha.go", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get file = %d", w.Code)
	}
	var resp FileResponse
	decode(t, w, &resp)
	if resp.Path != "alpha.go" || resp.Body == "" {
		t.Errorf("file = %+v", resp)
	}

	if w := do(t, router, http.MethodGet, "/files/nope.go", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing file = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/view", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/view", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
