package tree

import "context"

// callsProvider adapts a CallModel to the Provider contract.
//
// The model's change stream is exposed unfiltered: a *CallNode payload
// invalidates that subtree, no payload refreshes everything. Items are
// always collapsed; expansion is attempted lazily and may legitimately
// yield zero children.
type callsProvider struct {
	model CallModel
}

func newCallsProvider(m CallModel) *callsProvider {
	return &callsProvider{model: m}
}

func (c *callsProvider) Roots(ctx context.Context) ([]Node, error) {
	roots, err := c.model.Roots(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(roots))
	for i, n := range roots {
		out[i] = n
	}
	return out, nil
}

func (c *callsProvider) Children(ctx context.Context, n Node) ([]Node, error) {
	call, ok := n.(*CallNode)
	if !ok {
		return nil, nil
	}
	children, err := c.model.ResolveCalls(ctx, call)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(children))
	for i, child := range children {
		out[i] = child
	}
	return out, nil
}

func (c *callsProvider) Parent(n Node) Node {
	call, ok := n.(*CallNode)
	if !ok || call.Caller == nil {
		return nil
	}
	return call.Caller
}

func (c *callsProvider) Item(n Node) Item {
	call, ok := n.(*CallNode)
	if !ok {
		return Item{}
	}
	return Item{
		Label:       call.Name,
		Description: call.Detail,
		Icon:        kindIcons[call.Kind], // missing kinds render no icon
		Collapsible: Collapsed,
		Command:     &Command{ID: ShowCommand, Node: call},
	}
}

func (c *callsProvider) Events() <-chan Event { return c.model.Events() }

func (c *callsProvider) Close() {}
