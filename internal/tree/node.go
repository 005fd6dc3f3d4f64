// Package tree presents Raido's domain models (search results, call
// hierarchy, navigation history) through one uniform tree contract.
// Hosts bind to a single View and swap the underlying model at runtime.
package tree

import "github.com/starford/raido/internal/models"

// Node is the closed union of everything that can appear in the tree.
// Parent back-references are set at construction and never change; a
// node's lifetime is owned by the adapter/model that produced it.
type Node interface {
	isNode()
}

// FileGroupNode is a root-level entry grouping the matches within one file.
type FileGroupNode struct {
	Path string
}

func (*FileGroupNode) isNode() {}

// MatchNode is a single match location within a file. Before/Text/After
// are the preview fragments around the matched range; Text is exactly the
// matched text.
type MatchNode struct {
	File   *FileGroupNode
	Range  models.Range
	Before string
	Text   string
	After  string
}

func (*MatchNode) isNode() {}

// CallNode is one entry in a call-hierarchy traversal. Caller is nil for
// hierarchy roots. SymbolID links back to the indexed definition; zero
// when the target has no indexed definition.
type CallNode struct {
	Name     string
	Detail   string
	Kind     models.SymbolKind
	Loc      models.Location
	Caller   *CallNode
	SymbolID int64
}

func (*CallNode) isNode() {}

// HistoryNode is a record of a prior navigation. Terminal: no parent,
// no children.
type HistoryNode struct {
	Label       string
	Description string
	Target      models.Location
}

func (*HistoryNode) isNode() {}

// Collapsible describes a node's expansion affordance.
type Collapsible int

const (
	// NotCollapsible marks leaf nodes.
	NotCollapsible Collapsible = iota
	// Collapsed marks expandable nodes; children are resolved lazily and
	// may legitimately turn out empty.
	Collapsed
)

// Span is a half-open [Start, End) byte range within an item label.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ShowCommand is issued with the node as argument when an item is activated.
const ShowCommand = "raido.show"

// Command is an activation command attached to an item.
type Command struct {
	ID   string
	Node Node
}

// Item is the renderable form of a node.
type Item struct {
	Label       string
	Highlights  []Span
	Description string
	Icon        string
	Collapsible Collapsible
	Command     *Command
}

// Icon identifiers. Hosts map these to theme resources; an empty icon
// renders nothing.
const (
	iconFile    = "file"
	iconHistory = "history"
)

// kindIcons is the static symbol-kind to icon mapping. Kinds without an
// entry (notably "unknown") render no icon.
var kindIcons = map[models.SymbolKind]string{
	models.KindPackage:   "symbol-package",
	models.KindFunction:  "symbol-function",
	models.KindMethod:    "symbol-method",
	models.KindStruct:    "symbol-struct",
	models.KindInterface: "symbol-interface",
	models.KindType:      "symbol-type",
	models.KindConstant:  "symbol-constant",
	models.KindVariable:  "symbol-variable",
}
