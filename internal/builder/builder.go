// Package builder fuses project records and manual metadata into the
// canonical graph.
//
// Build is a pure function of its inputs apart from the generated_at stamp:
// the same layout, records and metadata always yield the same nodes and
// edges in the same order.
//
// Build runs in two passes. The first assembles every node backed by a
// record (phases, modules, contracts, docs, runs) and derives edges against
// that provisional set. The second synthesizes a placeholder Gate node for
// each edge endpoint that is still dangling, so every edge in the result
// references a node.
package builder

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/project"
	"github.com/roach88/specgraph/internal/value"
)

// Status flags set on nodes.
const (
	FlagPlaceholder = "placeholder"
	FlagCurrent     = "current"
)

// RunIDPrefix prefixes run node ids.
const RunIDPrefix = "run."

// DefaultCategories assigns a category to nodes whose override sets none.
var DefaultCategories = map[graph.Kind]string{
	graph.KindDoc:      "Docs",
	graph.KindModule:   "Modules",
	graph.KindContract: "Contracts",
	graph.KindPhase:    "Meta",
	graph.KindRun:      "Runs",
	graph.KindGate:     "Gates",
}

// Builder builds canonical graphs.
type Builder struct {
	resolver Resolver
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithResolver replaces the default ExactResolver.
func WithResolver(r Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithClock sets the source of generated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		resolver: ExactResolver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build fuses its inputs into a graph. Documentation files are discovered
// under layout.DocsRoot using the "docs_globs" list of m.UI.
func (b *Builder) Build(
	layout project.Layout,
	modules []project.ModuleSpec,
	contracts []project.ContractSchema,
	m *meta.Graph,
	runs project.RunState,
) *graph.Graph {
	if m == nil {
		m = meta.Default()
	}
	docs := project.IndexDocs(layout, m.UI.Strings("docs_globs"))

	st := newState()

	// Pass 1: record-backed nodes, in final kind order.
	for _, ph := range m.SortedPhases() {
		label := ph.Label
		if label == "" {
			label = ph.ID
		}
		st.addNode(graph.Node{
			ID:       ph.ID,
			Kind:     graph.KindPhase,
			Label:    label,
			Meta:     value.Object{{Key: "order", Value: value.NewInt(int64(ph.Order))}},
			Category: DefaultCategories[graph.KindPhase],
		})
	}

	modules = slices.Clone(modules)
	slices.SortStableFunc(modules, func(a, b project.ModuleSpec) int { return cmp.Compare(a.ID, b.ID) })
	for _, spec := range modules {
		n := graph.Node{
			ID:    spec.ID,
			Kind:  graph.KindModule,
			Label: firstNonEmpty(spec.Label, spec.ID),
			Path:  spec.Path,
			Phase: graph.UnassignedPhase,
		}
		if o, ok := m.Module(spec.ID); ok {
			applyOverride(&n, o.Phase, o.Tier, o.Mutable, o.Pinned, o.Category)
		}
		st.addNode(withDefaultCategory(n))
	}

	contracts = slices.Clone(contracts)
	slices.SortStableFunc(contracts, func(a, b project.ContractSchema) int { return cmp.Compare(a.ID, b.ID) })
	for _, c := range contracts {
		n := graph.Node{
			ID:    c.ID,
			Kind:  graph.KindContract,
			Label: firstNonEmpty(c.Label, c.ID),
			Path:  c.SchemaPath,
			Phase: graph.UnassignedPhase,
		}
		if o, ok := m.Contract(c.ID); ok {
			applyOverride(&n, o.Phase, o.Tier, o.Mutable, o.Pinned, o.Category)
		}
		st.addNode(withDefaultCategory(n))
	}

	for _, d := range docs {
		st.addNode(withDefaultCategory(graph.Node{
			ID:    d.ID,
			Kind:  graph.KindDoc,
			Label: d.Label,
			Path:  d.Path,
		}))
	}

	runNodes := make([]graph.Node, 0, len(runs.Runs))
	for _, r := range runs.Runs {
		n := graph.Node{
			ID:          RunIDPrefix + r.ID,
			Kind:        graph.KindRun,
			Label:       r.ID,
			Path:        r.Path,
			StatusFlags: []string{r.Status},
		}
		if r.ID == runs.CurrentRun {
			n.StatusFlags = append(n.StatusFlags, FlagCurrent)
		}
		n.Meta.Set("status", value.String(r.Status))
		if r.StartTime != "" {
			n.Meta.Set("start_time", value.String(r.StartTime))
		}
		runNodes = append(runNodes, withDefaultCategory(n))
	}
	slices.SortStableFunc(runNodes, func(a, b graph.Node) int {
		return cmp.Or(
			cmp.Compare(a.Meta.String("start_time", ""), b.Meta.String("start_time", "")),
			cmp.Compare(a.ID, b.ID),
		)
	})
	// Runs go last; gates are inserted before them in pass 2.
	recordNodes := len(st.nodes)
	for _, n := range runNodes {
		st.addNode(n)
	}

	idx := NewIndex(st.nodes)

	// Auto edges from module specs.
	for _, spec := range modules {
		if !st.has(spec.ID) {
			continue
		}
		for _, ref := range spec.Inputs {
			st.addAutoEdge(spec.ID, graph.EdgeConsumes, b.resolve(ref, idx), ref, true)
		}
		for _, ref := range spec.Outputs {
			st.addAutoEdge(spec.ID, graph.EdgeProduces, b.resolve(ref, idx), ref, false)
		}
		for _, ref := range spec.Verifies {
			st.addAutoEdge(spec.ID, graph.EdgeVerifies, b.resolve(ref, idx), ref, false)
		}
		for _, ref := range spec.TraceLinks {
			st.addAutoEdge(spec.ID, graph.EdgeDocsLink, b.resolve(ref, idx), ref, false)
		}
	}

	// Run outputs that are also node paths.
	for _, r := range runs.Runs {
		for _, out := range r.Outputs {
			if id, ok := idx.paths[out]; ok {
				st.addEdge(graph.Edge{
					ID:         graph.EdgeID(RunIDPrefix+r.ID, graph.EdgeRunTouches, id),
					Source:     RunIDPrefix + r.ID,
					Target:     id,
					Type:       graph.EdgeRunTouches,
					Confidence: graph.ConfidenceAuto,
				})
			}
		}
	}

	// Manual edges.
	for _, e := range m.Edges {
		if e.Source == "" || e.Target == "" || e.Type == "" {
			slog.Debug("manual edge skipped: missing field", "id", e.ID, "source", e.Source, "target", e.Target, "type", e.Type)
			continue
		}
		st.addEdge(graph.Edge{
			ID:         e.Key(),
			Source:     e.Source,
			Target:     e.Target,
			Type:       e.Type,
			Label:      e.Label,
			Confidence: graph.ConfidenceManual,
			View:       e.View,
			Aggregate:  e.Aggregate,
		})
	}

	// Pass 2: placeholder gates for dangling endpoints.
	gates := st.placeholders()
	nodes := make([]graph.Node, 0, len(st.nodes)+len(gates))
	nodes = append(nodes, st.nodes[:recordNodes]...)
	nodes = append(nodes, gates...)
	nodes = append(nodes, st.nodes[recordNodes:]...)

	edges := st.edges()
	edges = append(edges, phaseContains(nodes, st.keys)...)

	g := graph.New(b.now().UTC().Format(time.RFC3339))
	g.Nodes = nodes
	g.Edges = edges

	slog.Debug("graph built",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"placeholders", len(gates))
	return g
}

type resolved struct {
	id   string
	conf graph.Confidence
	ok   bool
}

func (b *Builder) resolve(ref string, idx *Index) resolved {
	id, conf, ok := b.resolver.Resolve(ref, idx)
	return resolved{id: id, conf: conf, ok: ok}
}

// phaseContains links each phase to its modules and contracts, and sets
// Parent and ChildrenCount. Keys already taken by other edges are skipped.
func phaseContains(nodes []graph.Node, taken map[graph.Key]int) []graph.Edge {
	var out []graph.Edge
	for i := range nodes {
		phase := &nodes[i]
		if phase.Kind != graph.KindPhase {
			continue
		}
		for j := range nodes {
			n := &nodes[j]
			if n.Kind != graph.KindModule && n.Kind != graph.KindContract {
				continue
			}
			if n.Phase != phase.ID {
				continue
			}
			n.Parent = phase.ID
			phase.ChildrenCount++

			e := graph.Edge{
				ID:         graph.EdgeID(phase.ID, graph.EdgePhaseContains, n.ID),
				Source:     phase.ID,
				Target:     n.ID,
				Type:       graph.EdgePhaseContains,
				Confidence: graph.ConfidenceAuto,
			}
			if _, dup := taken[e.Key()]; dup {
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

func applyOverride(n *graph.Node, phase, tier string, mutable, pinned bool, category string) {
	if phase != "" {
		n.Phase = phase
	}
	n.Tier = tier
	n.Mutable = mutable
	n.Pinned = pinned
	n.Category = category
}

func withDefaultCategory(n graph.Node) graph.Node {
	if n.Category == "" {
		n.Category = DefaultCategories[n.Kind]
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
