package tree

import (
	"context"
	"sync"
)

// View is the single tree surface hosts bind to. It holds exactly one
// active provider at a time and forwards that provider's events through
// one outward channel that stays valid for the View's entire lifetime;
// only the upstream source is rebound, never the channel itself.
type View struct {
	mu     sync.Mutex
	active Provider
	stop   chan struct{}
	done   chan struct{}

	out chan Event
}

// NewView creates an unbound View. Queries against an unbound view
// answer with nothing rather than failing.
func NewView() *View {
	return &View{out: make(chan Event, 64)}
}

// Events returns the persistent outward change stream. Hosts subscribe
// exactly once; the channel survives arbitrarily many Bind calls.
func (v *View) Events() <-chan Event { return v.out }

// Bind swaps the underlying model. Order matters:
//
//  1. stop forwarding from (and release) the previous provider, so no
//     two providers are ever subscribed at once;
//  2. construct the provider matching the source tag;
//  3. emit one full refresh on the outward stream;
//  4. only then start forwarding the new provider's events.
//
// The refresh is therefore observed strictly before any event sourced
// from the new model, so hosts discard stale nodes instead of racing
// them against fresh ones. A nil source unbinds.
func (v *View) Bind(src Source) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stop != nil {
		close(v.stop)
		<-v.done
		v.stop, v.done = nil, nil
	}
	if v.active != nil {
		v.active.Close()
		v.active = nil
	}

	switch s := src.(type) {
	case SearchSource:
		v.active = newSearchProvider(s.Model)
	case CallsSource:
		v.active = newCallsProvider(s.Model)
	case HistorySource:
		v.active = newHistoryProvider(s.Log)
	}

	v.emit(Event{})

	if v.active != nil {
		v.stop = make(chan struct{})
		v.done = make(chan struct{})
		go v.pump(v.active.Events(), v.stop, v.done)
	}
}

// pump forwards provider events to the outward channel until stopped or
// the source closes.
func (v *View) pump(src <-chan Event, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			select {
			case v.out <- ev:
			case <-stop:
				return
			}
		}
	}
}

// emit enqueues an event without ever blocking Bind. When the buffer is
// full the oldest queued event is discarded first: a full refresh
// supersedes anything still queued.
func (v *View) emit(ev Event) {
	for {
		select {
		case v.out <- ev:
			return
		default:
			select {
			case <-v.out:
			default:
			}
		}
	}
}

// Roots returns the active provider's root nodes, or nothing when unbound.
func (v *View) Roots(ctx context.Context) ([]Node, error) {
	p := v.provider()
	if p == nil {
		return nil, nil
	}
	return p.Roots(ctx)
}

// Children returns the children of n; n == nil means the root set.
func (v *View) Children(ctx context.Context, n Node) ([]Node, error) {
	p := v.provider()
	if p == nil {
		return nil, nil
	}
	if n == nil {
		return p.Roots(ctx)
	}
	return p.Children(ctx, n)
}

// Parent returns n's parent, or nil.
func (v *View) Parent(n Node) Node {
	p := v.provider()
	if p == nil {
		return nil
	}
	return p.Parent(n)
}

// Item returns the renderable form of n; the zero Item when unbound.
func (v *View) Item(n Node) Item {
	p := v.provider()
	if p == nil {
		return Item{}
	}
	return p.Item(n)
}

func (v *View) provider() Provider {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// Close releases the active provider and stops forwarding. The outward
// channel is left open; a closed View simply goes quiet.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		close(v.stop)
		<-v.done
		v.stop, v.done = nil, nil
	}
	if v.active != nil {
		v.active.Close()
		v.active = nil
	}
}
