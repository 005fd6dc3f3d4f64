// Package search implements the text-search model: matches for one query,
// grouped by file, with per-file invalidation driven by the watcher.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/tree"
)

// Index is the slice of the workspace index the model needs.
type Index interface {
	MatchFiles(query string, limit int) ([]string, error)
	FileBody(path string) (string, error)
}

// Model holds the results of one query. It observes the index read-only;
// Invalidate tells it a file changed on disk.
type Model struct {
	idx   Index
	query string

	mu     sync.Mutex
	items  []*tree.FileGroupNode
	byPath map[string]*tree.FileGroupNode

	out chan tree.Event
}

// New runs the query and materializes the root file groups. The index
// narrows candidates (FTS or LIKE); each candidate is then verified to
// contain the literal query so tokenized matching cannot produce false
// items.
func New(idx Index, query string, limit int) (*Model, error) {
	m := &Model{
		idx:    idx,
		query:  query,
		byPath: make(map[string]*tree.FileGroupNode),
		out:    make(chan tree.Event, 16),
	}

	paths, err := idx.MatchFiles(query, limit)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		body, err := idx.FileBody(p)
		if err != nil || !strings.Contains(body, query) {
			continue
		}
		f := &tree.FileGroupNode{Path: p}
		m.items = append(m.items, f)
		m.byPath[p] = f
	}
	return m, nil
}

// Query returns the literal query this model was built for.
func (m *Model) Query() string { return m.query }

// Items returns the current root file groups in path order.
func (m *Model) Items() []*tree.FileGroupNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*tree.FileGroupNode, len(m.items))
	copy(out, m.items)
	return out
}

// Matches greps the stored body of f line by line and returns one match
// node per literal occurrence, in line/column order. Every returned node
// has f as its parent.
func (m *Model) Matches(_ context.Context, f *tree.FileGroupNode) ([]*tree.MatchNode, error) {
	body, err := m.idx.FileBody(f.Path)
	if err != nil {
		return nil, err
	}

	var out []*tree.MatchNode
	for lineNo, line := range strings.Split(body, "\n") {
		rest := line
		col := 0
		for {
			i := strings.Index(rest, m.query)
			if i < 0 {
				break
			}
			start := col + i
			out = append(out, &tree.MatchNode{
				File: f,
				Range: models.Range{
					Start: models.Position{Line: lineNo + 1, Column: start + 1},
					End:   models.Position{Line: lineNo + 1, Column: start + 1 + len(m.query)},
				},
				Before: line[:start],
				Text:   m.query,
				After:  line[start+len(m.query):],
			})
			col = start + len(m.query)
			rest = line[col:]
		}
	}
	return out, nil
}

// Events returns the model's change stream. Payloads are either a
// *FileGroupNode (that file's matches went stale) or nothing (the item
// list itself changed).
func (m *Model) Events() <-chan tree.Event { return m.out }

// Invalidate reconciles one changed path against the result set:
//
//   - file was an item and still matches: narrow event naming its node
//   - file was an item and no longer matches (or is gone): item removed,
//     full refresh
//   - file newly matches the query: item inserted in path order, full
//     refresh
func (m *Model) Invalidate(path string) {
	body, err := m.idx.FileBody(path)
	matches := err == nil && strings.Contains(body, m.query)

	m.mu.Lock()
	f, known := m.byPath[path]
	switch {
	case known && matches:
		m.mu.Unlock()
		m.emit(tree.Event{Node: f})
		return
	case known && !matches:
		delete(m.byPath, path)
		for i, item := range m.items {
			if item == f {
				m.items = append(m.items[:i], m.items[i+1:]...)
				break
			}
		}
	case !known && matches:
		nf := &tree.FileGroupNode{Path: path}
		m.byPath[path] = nf
		i := sort.Search(len(m.items), func(i int) bool { return m.items[i].Path >= path })
		m.items = append(m.items, nil)
		copy(m.items[i+1:], m.items[i:])
		m.items[i] = nf
	default:
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.emit(tree.Event{})
}

// emit never blocks; when no adapter is draining, events are dropped.
func (m *Model) emit(ev tree.Event) {
	select {
	case m.out <- ev:
	default:
	}
}
