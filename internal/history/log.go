// Package history implements the navigation-history log backed by the
// visits table of the workspace index.
package history

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/tree"
)

// Index is the slice of the workspace index the log needs.
type Index interface {
	InsertVisit(v models.Visit, limit int) (int64, error)
	ListVisits(limit int) ([]models.Visit, error)
	ClearVisits() error
}

// Log records navigations and presents them most recent first. The log
// is mutated through Append/Clear only; its event stream is how bound
// trees learn the collection changed.
type Log struct {
	idx   Index
	limit int

	out chan tree.Event
}

// New creates a log keeping at most limit visits.
func New(idx Index, limit int) *Log {
	if limit <= 0 {
		limit = 100
	}
	return &Log{idx: idx, limit: limit, out: make(chan tree.Event, 16)}
}

// Append records a visit, trimming the oldest beyond the limit.
func (l *Log) Append(v models.Visit) error {
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now()
	}
	if _, err := l.idx.InsertVisit(v, l.limit); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	l.emit()
	return nil
}

// Clear removes every visit.
func (l *Log) Clear() error {
	if err := l.idx.ClearVisits(); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	l.emit()
	return nil
}

// Visits returns the raw records, most recent first.
func (l *Log) Visits() ([]models.Visit, error) {
	return l.idx.ListVisits(l.limit)
}

// Entries returns the history as tree nodes, most recent first. A failing
// read degrades to an empty list; the tree renders nothing rather than
// failing the render pass.
func (l *Log) Entries() []*tree.HistoryNode {
	visits, err := l.idx.ListVisits(l.limit)
	if err != nil {
		slog.Warn("history: list failed", slog.String("error", err.Error()))
		return nil
	}
	out := make([]*tree.HistoryNode, len(visits))
	for i, v := range visits {
		out[i] = &tree.HistoryNode{
			Label:       v.Label,
			Description: v.Description,
			Target:      v.Target,
		}
	}
	return out
}

// Events returns the log's change stream; it fires on every mutation.
func (l *Log) Events() <-chan tree.Event { return l.out }

func (l *Log) emit() {
	select {
	case l.out <- tree.Event{}:
	default:
	}
}
