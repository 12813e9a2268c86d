// Package results owns the current search result set together with its
// token index and the active-token selection.
package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/f3rmion/manchu/internal/align"
	"github.com/f3rmion/manchu/internal/manchu"
	"github.com/f3rmion/manchu/internal/nav"
	"github.com/f3rmion/manchu/internal/reqseq"
)

var (
	// ErrSearchFailed wraps an error reported by the Searcher.
	ErrSearchFailed = errors.New("search failed")
	// ErrStale is returned by Apply for an outcome superseded by a newer search.
	ErrStale = errors.New("stale search result")
)

// Searcher runs the actual match over the corpus.
type Searcher interface {
	Search(ctx context.Context, query string) ([]manchu.Record, error)
}

// Ticket identifies one issued search.
type Ticket struct {
	Seq   uint64
	Query string
}

// Outcome is the searcher's answer to one Ticket.
type Outcome struct {
	Ticket  Ticket
	Records []manchu.Record
	Err     error
}

// Manager holds the result set. Begin, Fetch, Apply and the result set
// accessors are safe for concurrent use. The selection is not: Apply resets
// it, so Apply and every user of Selection or Navigator must share one
// goroutine, which in the TUI is the update loop.
type Manager struct {
	searcher Searcher
	logger   *slog.Logger
	seq      reqseq.Sequence

	mu        sync.RWMutex
	query     string
	records   []manchu.Record
	index     *align.Index
	selection nav.Selection
}

// NewManager creates an empty manager.
func NewManager(searcher Searcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		searcher: searcher,
		logger:   logger.With("component", "results"),
		index:    align.NewIndex(nil),
	}
}

// Begin issues a ticket for query. Any outcome of an earlier ticket becomes stale.
func (m *Manager) Begin(query string) Ticket {
	return Ticket{Seq: m.seq.Next(), Query: query}
}

// Fetch runs the searcher for t. It does not touch the result set, so it may
// run outside the UI loop.
func (m *Manager) Fetch(ctx context.Context, t Ticket) Outcome {
	records, err := m.searcher.Search(ctx, t.Query)
	return Outcome{Ticket: t, Records: records, Err: err}
}

// Apply installs an outcome. Stale outcomes are dropped with ErrStale. A failed
// outcome leaves the previous result set, index and selection untouched and
// returns an error wrapping ErrSearchFailed. A successful one replaces the
// result set, rebuilds the index and clears the selection.
func (m *Manager) Apply(o Outcome) error {
	var index *align.Index
	if o.Err == nil {
		index = align.NewIndex(o.Records)
	}

	// The latest check and the swap share the lock so an older outcome can
	// never overwrite a newer one that was applied in between.
	m.mu.Lock()
	latest := m.seq.IsLatest(o.Ticket.Seq)
	if latest && o.Err == nil {
		m.query = o.Ticket.Query
		m.records = o.Records
		m.index = index
		m.selection.Reset()
	}
	m.mu.Unlock()

	if !latest {
		m.logger.Debug("discarding stale search result",
			slog.Uint64("seq", o.Ticket.Seq),
			slog.Uint64("latest", m.seq.Latest()),
			slog.String("query", o.Ticket.Query))
		return ErrStale
	}

	if o.Err != nil {
		m.logger.Error("search failed",
			slog.String("query", o.Ticket.Query),
			slog.String("error", o.Err.Error()))
		return fmt.Errorf("%w: %w", ErrSearchFailed, o.Err)
	}

	m.logger.Info("result set replaced",
		slog.String("query", o.Ticket.Query),
		slog.Int("records", len(o.Records)),
		slog.Int("tokens", index.Size()))
	return nil
}

// Search runs a complete search synchronously.
func (m *Manager) Search(ctx context.Context, query string) error {
	return m.Apply(m.Fetch(ctx, m.Begin(query)))
}

// Records returns the current result set.
func (m *Manager) Records() []manchu.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records
}

// Query returns the query that produced the current result set.
func (m *Manager) Query() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.query
}

// Index returns the token index of the current result set.
func (m *Manager) Index() *align.Index {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index
}

// Siblings implements nav.SiblingSource over the current index.
func (m *Manager) Siblings(recordID int64) []align.TokenID {
	return m.Index().Siblings(recordID)
}

// Selection returns the selection owned by the manager. Callers may Select on
// it; only Apply resets it. It is not guarded by the manager's lock.
func (m *Manager) Selection() *nav.Selection {
	return &m.selection
}

// Navigator returns a navigator bound to this manager's selection and index.
func (m *Manager) Navigator(scroller nav.Scroller) *nav.Navigator {
	return nav.NewNavigator(&m.selection, m, scroller)
}
