// Package viewservice coordinates the tree view, the domain models, and
// the node-ref registry that lets wire clients (REST, MCP) address nodes.
package viewservice

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/calls"
	"github.com/starford/raido/internal/history"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/tree"
)

// Modes a view can be bound to.
const (
	ModeNone    = "none"
	ModeSearch  = "search"
	ModeCalls   = "calls"
	ModeHistory = "history"
)

// ViewState describes the current binding.
type ViewState struct {
	Mode      string `json:"mode"`
	Query     string `json:"query,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// TreeItem is the wire form of a rendered node. Ref addresses the node in
// subsequent children/parent calls; refs die on the next bind.
type TreeItem struct {
	Ref         string           `json:"ref"`
	Label       string           `json:"label"`
	Highlights  []tree.Span      `json:"highlights,omitempty"`
	Description string           `json:"description,omitempty"`
	Icon        string           `json:"icon,omitempty"`
	Expandable  bool             `json:"expandable"`
	Target      *models.Location `json:"target,omitempty"`
}

// Service owns the view and the models bound to it.
type Service struct {
	db      index.WorkspaceIndex
	view    *tree.View
	log     *history.Log
	maxHits int

	mu      sync.Mutex
	state   ViewState
	searchM *search.Model
	callsM  *calls.Model
	nextRef int
	byRef   map[string]tree.Node
	refs    map[tree.Node]string
}

// New creates a service around an unbound view. maxHits caps search
// candidate files per query.
func New(db index.WorkspaceIndex, log *history.Log, maxHits int) *Service {
	if maxHits <= 0 {
		maxHits = 100
	}
	return &Service{
		db:      db,
		view:    tree.NewView(),
		log:     log,
		maxHits: maxHits,
		state:   ViewState{Mode: ModeNone},
		byRef:   make(map[string]tree.Node),
		refs:    make(map[tree.Node]string),
	}
}

// Events exposes the view's persistent outward change stream.
func (s *Service) Events() <-chan tree.Event { return s.view.Events() }

// State returns the current binding descriptor.
func (s *Service) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BindSearch runs query against the index and binds the result set.
func (s *Service) BindSearch(query string) error {
	if query == "" {
		return fmt.Errorf("empty query: %w", apperr.ErrInvalid)
	}
	m, err := search.New(s.db, query, s.maxHits)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.searchM, s.callsM = m, nil
	s.state = ViewState{Mode: ModeSearch, Query: query}
	s.resetRefs()
	s.mu.Unlock()

	s.view.Bind(tree.SearchSource{Model: m})
	return nil
}

// BindCalls binds a call hierarchy rooted at symbol.
func (s *Service) BindCalls(symbol string, dir calls.Direction) error {
	if symbol == "" {
		return fmt.Errorf("empty symbol: %w", apperr.ErrInvalid)
	}
	m := calls.New(s.db, symbol, dir)
	s.mu.Lock()
	s.searchM, s.callsM = nil, m
	s.state = ViewState{Mode: ModeCalls, Symbol: symbol, Direction: string(m.Direction())}
	s.resetRefs()
	s.mu.Unlock()

	s.view.Bind(tree.CallsSource{Model: m})
	return nil
}

// BindHistory binds the navigation history.
func (s *Service) BindHistory() error {
	s.mu.Lock()
	s.searchM, s.callsM = nil, nil
	s.state = ViewState{Mode: ModeHistory}
	s.resetRefs()
	s.mu.Unlock()

	s.view.Bind(tree.HistorySource{Log: s.log})
	return nil
}

// OnFileEvent feeds a watcher event to whichever model is bound. Results
// arriving for a since-unbound model go nowhere, by construction.
func (s *Service) OnFileEvent(_, path string) {
	s.mu.Lock()
	sm, cm := s.searchM, s.callsM
	s.mu.Unlock()
	if sm != nil {
		sm.Invalidate(path)
	}
	if cm != nil {
		cm.Invalidate(path)
	}
}

// Children returns the rendered children of ref; an empty ref means the
// root set. A stale or unknown ref yields an empty list, mirroring how
// post-swap results are discarded silently.
func (s *Service) Children(ctx context.Context, ref string) ([]TreeItem, error) {
	var parent tree.Node
	if ref != "" {
		parent = s.lookup(ref)
		if parent == nil {
			return []TreeItem{}, nil
		}
	}
	nodes, err := s.view.Children(ctx, parent)
	if err != nil {
		return nil, err
	}
	out := make([]TreeItem, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.render(n))
	}
	return out, nil
}

// Item returns the rendered form of one node.
func (s *Service) Item(ref string) (TreeItem, error) {
	n := s.lookup(ref)
	if n == nil {
		return TreeItem{}, fmt.Errorf("ref %q: %w", ref, apperr.ErrNotFound)
	}
	return s.render(n), nil
}

// Parent returns the rendered parent of ref, or nil for roots.
func (s *Service) Parent(ref string) (*TreeItem, error) {
	n := s.lookup(ref)
	if n == nil {
		return nil, fmt.Errorf("ref %q: %w", ref, apperr.ErrNotFound)
	}
	p := s.view.Parent(n)
	if p == nil {
		return nil, nil
	}
	item := s.render(p)
	return &item, nil
}

// RecordVisit appends to the navigation history.
func (s *Service) RecordVisit(v models.Visit) error {
	return s.log.Append(v)
}

// History returns the raw visit records, most recent first.
func (s *Service) History() ([]models.Visit, error) {
	return s.log.Visits()
}

// ClearHistory wipes the visit log.
func (s *Service) ClearHistory() error {
	return s.log.Clear()
}

// RefOf returns the wire ref for a node, registering it if needed.
// Returns "" for nil (a full refresh has no subject).
func (s *Service) RefOf(n tree.Node) string {
	if n == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(n)
}

func (s *Service) render(n tree.Node) TreeItem {
	item := s.view.Item(n)
	return TreeItem{
		Ref:         s.RefOf(n),
		Label:       item.Label,
		Highlights:  item.Highlights,
		Description: item.Description,
		Icon:        item.Icon,
		Expandable:  item.Collapsible == tree.Collapsed,
		Target:      targetOf(n),
	}
}

// targetOf extracts the location a "show" activation should navigate to.
func targetOf(n tree.Node) *models.Location {
	switch v := n.(type) {
	case *tree.FileGroupNode:
		return &models.Location{Path: v.Path}
	case *tree.MatchNode:
		return &models.Location{Path: v.File.Path, Range: v.Range}
	case *tree.CallNode:
		loc := v.Loc
		return &loc
	case *tree.HistoryNode:
		loc := v.Target
		return &loc
	}
	return nil
}

func (s *Service) lookup(ref string) tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byRef[ref]
}

// register must be called with s.mu held.
func (s *Service) register(n tree.Node) string {
	if ref, ok := s.refs[n]; ok {
		return ref
	}
	s.nextRef++
	ref := "n" + strconv.Itoa(s.nextRef)
	s.refs[n] = ref
	s.byRef[ref] = n
	return ref
}

// resetRefs must be called with s.mu held.
func (s *Service) resetRefs() {
	s.byRef = make(map[string]tree.Node)
	s.refs = make(map[tree.Node]string)
}

// Close releases the bound provider; the service is not reusable after.
func (s *Service) Close() {
	s.view.Close()
}
