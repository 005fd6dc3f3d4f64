package tree

import "context"

// Event is a change notification. A nil Node means "refresh everything";
// a non-nil Node invalidates only that node's subtree.
type Event struct {
	Node Node
}

// Provider is the tree-data contract each adapter implements. Children of
// an out-of-contract node (a leaf, or a node from another adapter) are an
// empty sequence, never an error.
type Provider interface {
	Roots(ctx context.Context) ([]Node, error)
	Children(ctx context.Context, n Node) ([]Node, error)
	Parent(n Node) Node
	Item(n Node) Item
	Events() <-chan Event
	Close()
}

// SearchModel is the search-results collaborator: items are the root file
// groups of the current query; Matches resolves the match nodes of one
// file group (potentially reading the document, hence ctx). The model is
// observed, never mutated.
type SearchModel interface {
	Items() []*FileGroupNode
	Matches(ctx context.Context, f *FileGroupNode) ([]*MatchNode, error)
	Events() <-chan Event
}

// CallModel is the call-hierarchy collaborator. ResolveCalls may be
// expensive and is only ever invoked lazily on expansion.
type CallModel interface {
	Roots(ctx context.Context) ([]*CallNode, error)
	ResolveCalls(ctx context.Context, n *CallNode) ([]*CallNode, error)
	Events() <-chan Event
}

// HistoryLog is the navigation-history collaborator: a flat, already
// materialized sequence. Its event stream is the only way the tree learns
// the underlying collection changed.
type HistoryLog interface {
	Entries() []*HistoryNode
	Events() <-chan Event
}

// Source is the tagged union of bindable models. The View matches on the
// concrete tag to construct the corresponding adapter.
type Source interface {
	isSource()
}

// SearchSource binds a search-results model.
type SearchSource struct {
	Model SearchModel
}

func (SearchSource) isSource() {}

// CallsSource binds a call-hierarchy model.
type CallsSource struct {
	Model CallModel
}

func (CallsSource) isSource() {}

// HistorySource binds a navigation-history log.
type HistorySource struct {
	Log HistoryLog
}

func (HistorySource) isSource() {}
