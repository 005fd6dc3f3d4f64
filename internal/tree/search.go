package tree

import (
	"context"
	"sync"
)

// searchProvider adapts a SearchModel to the Provider contract.
//
// Children of a file group are computed at most once and cached until the
// model signals a change naming that file. Model events carrying a
// *FileGroupNode are forwarded verbatim (narrow invalidation); any other
// payload is normalized to a full refresh. Per-match invalidation is
// deliberately not tracked.
type searchProvider struct {
	model SearchModel

	mu    sync.Mutex
	cache map[*FileGroupNode][]*MatchNode

	out  chan Event
	stop chan struct{}
	done chan struct{}
}

func newSearchProvider(m SearchModel) *searchProvider {
	s := &searchProvider{
		model: m,
		cache: make(map[*FileGroupNode][]*MatchNode),
		out:   make(chan Event, 16),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.forward()
	return s
}

// forward is the adapter's subscription to the model's change stream.
func (s *searchProvider) forward() {
	defer close(s.done)
	src := s.model.Events()
	for {
		select {
		case <-s.stop:
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			out := Event{} // normalized: full refresh
			if fg, isFile := ev.Node.(*FileGroupNode); isFile {
				s.invalidate(fg)
				out = Event{Node: fg}
			} else {
				s.invalidateAll()
			}
			select {
			case s.out <- out:
			case <-s.stop:
				return
			}
		}
	}
}

func (s *searchProvider) invalidate(f *FileGroupNode) {
	s.mu.Lock()
	delete(s.cache, f)
	s.mu.Unlock()
}

func (s *searchProvider) invalidateAll() {
	s.mu.Lock()
	s.cache = make(map[*FileGroupNode][]*MatchNode)
	s.mu.Unlock()
}

func (s *searchProvider) Roots(_ context.Context) ([]Node, error) {
	items := s.model.Items()
	out := make([]Node, len(items))
	for i, f := range items {
		out[i] = f
	}
	return out, nil
}

func (s *searchProvider) Children(ctx context.Context, n Node) ([]Node, error) {
	f, ok := n.(*FileGroupNode)
	if !ok {
		// Matches (and foreign nodes) have no children.
		return nil, nil
	}

	s.mu.Lock()
	cached, hit := s.cache[f]
	s.mu.Unlock()
	if !hit {
		var err error
		cached, err = s.model.Matches(ctx, f)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[f] = cached
		s.mu.Unlock()
	}

	out := make([]Node, len(cached))
	for i, m := range cached {
		out[i] = m
	}
	return out, nil
}

func (s *searchProvider) Parent(n Node) Node {
	if m, ok := n.(*MatchNode); ok {
		return m.File
	}
	return nil
}

func (s *searchProvider) Item(n Node) Item {
	switch v := n.(type) {
	case *FileGroupNode:
		return Item{
			Label:       v.Path,
			Icon:        iconFile,
			Collapsible: Collapsed,
		}
	case *MatchNode:
		// Single line: before + matched + after, highlighting exactly
		// the matched fragment.
		label := v.Before + v.Text + v.After
		return Item{
			Label:      label,
			Highlights: []Span{{Start: len(v.Before), End: len(v.Before) + len(v.Text)}},
			Command:    &Command{ID: ShowCommand, Node: v},
		}
	}
	return Item{}
}

func (s *searchProvider) Events() <-chan Event { return s.out }

func (s *searchProvider) Close() {
	close(s.stop)
	<-s.done
}
