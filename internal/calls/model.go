// Package calls implements the call-hierarchy model over the indexed
// symbols and call sites.
package calls

import (
	"context"
	"fmt"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/tree"
)

// Direction selects which edges a traversal follows.
type Direction string

const (
	// Outgoing expands to the symbols a node calls.
	Outgoing Direction = "outgoing"
	// Incoming expands to the symbols calling a node.
	Incoming Direction = "incoming"
)

// Index is the slice of the workspace index the model needs.
type Index interface {
	SymbolsNamed(name string) ([]models.Symbol, error)
	CallersOf(name string) ([]models.Symbol, error)
	CalleesOf(symbolID int64) ([]models.CallSite, error)
}

// Model is a call hierarchy rooted at one symbol name. Resolution is
// lazy: nothing beyond the roots is computed until a node is expanded.
type Model struct {
	idx  Index
	root string
	dir  Direction

	out chan tree.Event
}

// New creates a hierarchy model. dir defaults to Outgoing.
func New(idx Index, root string, dir Direction) *Model {
	if dir != Incoming {
		dir = Outgoing
	}
	return &Model{idx: idx, root: root, dir: dir, out: make(chan tree.Event, 16)}
}

// Root returns the symbol name the hierarchy starts from.
func (m *Model) Root() string { return m.root }

// Direction returns the traversal direction.
func (m *Model) Direction() Direction { return m.dir }

// Roots returns every indexed definition of the root name, path/line
// ordered. An unknown name yields an empty hierarchy, not an error.
func (m *Model) Roots(_ context.Context) ([]*tree.CallNode, error) {
	syms, err := m.idx.SymbolsNamed(m.root)
	if err != nil {
		return nil, fmt.Errorf("calls: roots of %q: %w", m.root, err)
	}
	out := make([]*tree.CallNode, len(syms))
	for i, s := range syms {
		out[i] = nodeFor(s, nil)
	}
	return out, nil
}

// ResolveCalls expands one node in the model's direction. The result's
// parent references all equal n.
func (m *Model) ResolveCalls(_ context.Context, n *tree.CallNode) ([]*tree.CallNode, error) {
	if m.dir == Incoming {
		callers, err := m.idx.CallersOf(n.Name)
		if err != nil {
			return nil, fmt.Errorf("calls: callers of %q: %w", n.Name, err)
		}
		out := make([]*tree.CallNode, len(callers))
		for i, s := range callers {
			out[i] = nodeFor(s, n)
		}
		return out, nil
	}

	if n.SymbolID == 0 {
		// Target has no indexed definition; nothing to expand.
		return nil, nil
	}
	sites, err := m.idx.CalleesOf(n.SymbolID)
	if err != nil {
		return nil, fmt.Errorf("calls: callees of %q: %w", n.Name, err)
	}
	var out []*tree.CallNode
	for _, site := range sites {
		defs, err := m.idx.SymbolsNamed(site.Callee)
		if err != nil {
			return nil, fmt.Errorf("calls: resolve %q: %w", site.Callee, err)
		}
		if len(defs) > 0 {
			out = append(out, nodeFor(defs[0], n))
			continue
		}
		// No definition in the workspace (stdlib, third party, builtin):
		// surface the call site itself with an unknown kind.
		out = append(out, &tree.CallNode{
			Name:   site.Callee,
			Kind:   models.KindUnknown,
			Caller: n,
			Loc: models.Location{
				Path: n.Loc.Path,
				Range: models.Range{
					Start: site.Pos,
					End:   site.Pos,
				},
			},
		})
	}
	return out, nil
}

// Events returns the model's change stream.
func (m *Model) Events() <-chan tree.Event { return m.out }

// Invalidate signals that a workspace file changed. The hierarchy has no
// per-file structure to patch, so any change refreshes everything.
func (m *Model) Invalidate(string) {
	select {
	case m.out <- tree.Event{}:
	default:
	}
}

func nodeFor(s models.Symbol, parent *tree.CallNode) *tree.CallNode {
	return &tree.CallNode{
		Name:     s.Name,
		Detail:   s.Detail,
		Kind:     s.Kind,
		Loc:      s.Loc,
		Caller:   parent,
		SymbolID: s.ID,
	}
}
