package tree

import "context"

// historyProvider adapts a HistoryLog to the Provider contract. History
// is flat: children are always empty, parents always nil.
type historyProvider struct {
	log HistoryLog
}

func newHistoryProvider(l HistoryLog) *historyProvider {
	return &historyProvider{log: l}
}

func (h *historyProvider) Roots(_ context.Context) ([]Node, error) {
	entries := h.log.Entries()
	out := make([]Node, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out, nil
}

func (h *historyProvider) Children(_ context.Context, _ Node) ([]Node, error) {
	return nil, nil
}

func (h *historyProvider) Parent(_ Node) Node { return nil }

func (h *historyProvider) Item(n Node) Item {
	v, ok := n.(*HistoryNode)
	if !ok {
		return Item{}
	}
	return Item{
		Label:       v.Label,
		Description: v.Description,
		Icon:        iconHistory,
		Command:     &Command{ID: ShowCommand, Node: v},
	}
}

func (h *historyProvider) Events() <-chan Event { return h.log.Events() }

func (h *historyProvider) Close() {}
