package meta

import (
	"cmp"
	"slices"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// SchemaVersion is the metadata document schema version written by Save.
const SchemaVersion = "1.0.0"

// DefaultPhaseIDs are the built-in pipeline phases, in order.
var DefaultPhaseIDs = []string{"Ingest", "Preprocess", "Transcribe", "Slice", "Render", "Export"}

// Phase is an ordered pipeline stage.
type Phase struct {
	ID    string
	Label string
	Order int
}

// Module overrides fields of a module node with the same id.
type Module struct {
	ID       string
	Label    string
	Path     string
	Phase    string
	Tier     string
	Mutable  bool
	Pinned   bool
	Category string
}

// Contract overrides fields of a contract node with the same id.
type Contract struct {
	ID         string
	Label      string
	SchemaPath string
	Phase      string
	Tier       string
	Mutable    bool
	Pinned     bool
	Category   string
}

// Edge is a manually authored edge. Its confidence is always manual.
type Edge struct {
	ID     string
	Source string
	Target string
	Type   graph.EdgeType
	Label  string

	// View restricts the edge to one projected view; empty means all views.
	View string
	// Aggregate marks the edge for the Summary view.
	Aggregate bool
}

// Key returns the edge's identity key: its id, or "<source>-<type>-<target>".
func (e Edge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return graph.EdgeID(e.Source, e.Type, e.Target)
}

// Graph is the metadata document.
type Graph struct {
	SchemaVersion string
	Phases        []Phase
	Modules       []Module
	Contracts     []Contract
	Edges         []Edge
	Positions     map[string]graph.Point
	UI            value.Object
}

// Default returns the document used when none exists on disk:
// the six built-in phases with order 10, 20, ..., 60.
func Default() *Graph {
	g := &Graph{
		SchemaVersion: SchemaVersion,
		Positions:     map[string]graph.Point{},
	}
	for i, id := range DefaultPhaseIDs {
		g.Phases = append(g.Phases, Phase{ID: id, Label: id, Order: (i + 1) * 10})
	}
	return g
}

// SortedPhases returns the phases ordered by Order. Equal orders keep
// document order.
func (g *Graph) SortedPhases() []Phase {
	out := slices.Clone(g.Phases)
	slices.SortStableFunc(out, func(a, b Phase) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Module returns the override for id.
func (g *Graph) Module(id string) (Module, bool) {
	for _, m := range g.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Contract returns the override for id.
func (g *Graph) Contract(id string) (Contract, bool) {
	for _, c := range g.Contracts {
		if c.ID == id {
			return c, true
		}
	}
	return Contract{}, false
}

// Clone returns a deep copy of the document.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		SchemaVersion: g.SchemaVersion,
		Phases:        slices.Clone(g.Phases),
		Modules:       slices.Clone(g.Modules),
		Contracts:     slices.Clone(g.Contracts),
		Edges:         slices.Clone(g.Edges),
		Positions:     make(map[string]graph.Point, len(g.Positions)),
		UI:            g.UI.Clone(),
	}
	for id, p := range g.Positions {
		out.Positions[id] = p
	}
	return out
}
