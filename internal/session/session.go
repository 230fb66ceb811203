package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/roach88/specgraph/internal/builder"
	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/layout"
	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/project"
	"github.com/roach88/specgraph/internal/store"
)

// ErrUnknownNode reports a node id absent from the canonical graph.
var ErrUnknownNode = errors.New("unknown node")

// Session is one opened project.
type Session struct {
	root   string
	layout project.Layout

	modules   []project.ModuleSpec
	contracts []project.ContractSchema
	runs      project.RunState

	meta      *meta.Graph
	metaStore *meta.Store
	builder   *builder.Builder
	engine    *layout.Engine
	graph     *graph.Graph

	journal   *store.Store
	journalID string

	subscribers map[int]func(*graph.Graph)
	nextSub     int

	builderOpts []builder.Option
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source stamped into generated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.builderOpts = append(s.builderOpts, builder.WithClock(now))
	}
}

// WithResolver sets the builder's reference resolution policy.
func WithResolver(r builder.Resolver) Option {
	return func(s *Session) {
		s.builderOpts = append(s.builderOpts, builder.WithResolver(r))
	}
}

// WithJournal records every edit request in j. The session does not own j.
func WithJournal(j *store.Store) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// Open scans dir for a project, loads its records and metadata, and builds
// the canonical graph. An unrecognized project opens in degraded mode with
// warnings. The only errors come from the journal.
func Open(ctx context.Context, dir string, opts ...Option) (*Session, error) {
	s := &Session{
		metaStore:   meta.NewStore(),
		engine:      layout.New(),
		subscribers: map[int]func(*graph.Graph){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = builder.New(s.builderOpts...)

	s.layout = project.Scan(dir)
	s.root = s.layout.Root
	if s.root == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		s.root = abs
	}
	if !s.layout.Recognized {
		slog.Warn("project not recognized, opening degraded",
			"root", s.root,
			"warnings", s.layout.Warnings)
	} else if len(s.layout.Warnings) > 0 {
		slog.Warn("project scanned with warnings",
			"root", s.root,
			"warnings", s.layout.Warnings)
	}

	s.meta = s.metaStore.Load(s.root)

	if s.journal != nil {
		sess, err := s.journal.BeginSession(ctx, s.root)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		s.journalID = sess.ID
	}

	s.Rebuild()

	slog.Info("project opened",
		"root", s.root,
		"recognized", s.layout.Recognized,
		"modules", len(s.modules),
		"contracts", len(s.contracts),
		"runs", len(s.runs.Runs))
	return s, nil
}

// Rebuild re-reads the project records and recomputes the canonical graph
// from them and the in-memory metadata, then notifies subscribers.
func (s *Session) Rebuild() *graph.Graph {
	start := time.Now()

	s.modules = project.LoadModules(s.layout)
	s.contracts = project.LoadContracts(s.layout)
	s.runs = project.LoadRuns(s.layout)

	g := s.builder.Build(s.layout, s.modules, s.contracts, s.meta, s.runs)
	s.engine.Apply(g, s.meta)
	s.graph = g

	elapsed := time.Since(start)
	rebuildDuration.Observe(elapsed.Seconds())
	graphSize.WithLabelValues("nodes").Set(float64(len(g.Nodes)))
	graphSize.WithLabelValues("edges").Set(float64(len(g.Edges)))
	slog.Info("graph rebuilt",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", elapsed)

	s.notify(g)
	return g
}

// Subscribe registers fn to be called synchronously with the new graph
// after every rebuild. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(*graph.Graph)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

// notify calls subscribers in subscription order.
func (s *Session) notify(g *graph.Graph) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s.subscribers[id](g)
	}
}

// Root returns the resolved project root.
func (s *Session) Root() string {
	return s.root
}

// Layout returns the scanned project layout.
func (s *Session) Layout() project.Layout {
	return s.layout
}

// Graph returns the cached canonical graph. Callers must not mutate it.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// MetaGraph returns the in-memory metadata document. Callers must not
// mutate it; use the edit methods.
func (s *Session) MetaGraph() *meta.Graph {
	return s.meta
}

// JournalID returns the journal session id, or "" without a journal.
func (s *Session) JournalID() string {
	return s.journalID
}

// History returns this session's journaled edits, or all sessions' when
// all is set. Without a journal it returns an empty slice.
func (s *Session) History(ctx context.Context, all bool, limit int) ([]store.Edit, error) {
	if s.journal == nil {
		return []store.Edit{}, nil
	}
	sessionID := s.journalID
	if all {
		sessionID = ""
	}
	return s.journal.History(ctx, sessionID, limit)
}
