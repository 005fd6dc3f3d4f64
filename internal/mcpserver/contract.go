package mcpserver

// TreeContract describes how the switchable tree view behaves, for LLM
// consumers driving it through the tools.
const TreeContract = `# Raido Tree Contract

Raido presents one tree view that can show three different models. The
view is switchable: binding a new model replaces the previous one.

## Modes

- **search** — files matching a literal text query. Each root is a file
  group; its children are the individual match lines.
- **calls** — a call hierarchy rooted at a symbol name. Each root is an
  indexed definition of that name; expanding a node resolves its calls
  in the bound direction (` + "`outgoing`" + ` or ` + "`incoming`" + `).
- **history** — the flat navigation log, most recent first. History
  entries have no children.

## Node refs

Every rendered item carries a ` + "`ref`" + ` addressing the node in subsequent
tree calls. Refs are only valid for the current binding: **switching
modes invalidates all previously issued refs.** A stale ref yields an
empty child list rather than an error.

## Events

The SSE stream (` + "`GET /api/events`" + `) emits:

- ` + "`tree.refresh`" + ` — the whole tree changed; re-fetch from the roots.
  Emitted on every mode switch and throttled under churn.
- ` + "`tree.changed`" + ` with ` + "`{\"ref\": ...}`" + ` — only that subtree changed;
  re-fetch its children.

After a mode switch the refresh always arrives before any event from
the new model, so consumers can safely discard everything they knew.

## Read-only

Raido observes the workspace. No tool or endpoint writes source files;
only the navigation history is mutable.
`
