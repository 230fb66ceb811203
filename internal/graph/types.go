// Package graph defines the canonical project graph: typed nodes, typed
// edges, and the versioned envelope handed to renderers.
package graph

import (
	"github.com/roach88/specgraph/internal/value"
)

// SchemaVersion is the graph envelope schema version.
const SchemaVersion = "1.0.0"

// UnassignedPhase is the phase of a node that belongs to no declared phase.
const UnassignedPhase = "Unassigned"

// Kind is the node kind.
type Kind string

const (
	KindDoc      Kind = "Doc"
	KindModule   Kind = "Module"
	KindContract Kind = "Contract"
	KindGate     Kind = "Gate"
	KindRun      Kind = "Run"
	KindPhase    Kind = "Phase"
	KindCategory Kind = "Category"
)

// EdgeType is the relationship an edge encodes.
type EdgeType string

const (
	EdgeDocsLink      EdgeType = "docs_link"
	EdgeProduces      EdgeType = "produces"
	EdgeConsumes      EdgeType = "consumes"
	EdgeVerifies      EdgeType = "verifies"
	EdgePhaseContains EdgeType = "phase_contains"
	EdgeRunTouches    EdgeType = "run_touches"
)

// Confidence is the provenance of an edge.
type Confidence string

const (
	ConfidenceManual Confidence = "manual" // user-authored
	ConfidenceAuto   Confidence = "auto"   // derived from spec text
	ConfidenceLow    Confidence = "low"    // weakly resolved reference
)

// Rank orders confidences for deduplication: manual > auto > low > unknown.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceManual:
		return 3
	case ConfidenceAuto:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Point is a 2D canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one vertex of the canonical graph.
type Node struct {
	ID            string       `json:"id"`
	Kind          Kind         `json:"type"`
	Label         string       `json:"label"`
	Phase         string       `json:"phase,omitempty"`
	Path          string       `json:"path,omitempty"`
	StatusFlags   []string     `json:"statusFlags,omitempty"`
	Meta          value.Object `json:"meta,omitempty"`
	Parent        string       `json:"parent,omitempty"`
	View          string       `json:"view,omitempty"`
	Group         string       `json:"group,omitempty"`
	Position      *Point       `json:"position,omitempty"` // nil means "needs layout"
	Tier          string       `json:"tier,omitempty"`
	Mutable       bool         `json:"mutable,omitempty"`
	Pinned        bool         `json:"pinned,omitempty"`
	Collapsed     bool         `json:"collapsed,omitempty"`
	ChildrenCount int          `json:"childrenCount,omitempty"`
	Category      string       `json:"category,omitempty"`
}

// Clone returns a copy that shares no mutable state with n.
func (n Node) Clone() Node {
	out := n
	if n.StatusFlags != nil {
		out.StatusFlags = append([]string(nil), n.StatusFlags...)
	}
	out.Meta = n.Meta.Clone()
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// HasFlag reports whether the node carries the status flag.
func (n Node) HasFlag(flag string) bool {
	for _, f := range n.StatusFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Edge is one directed relationship of the canonical graph.
type Edge struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Type       EdgeType     `json:"type"`
	Label      string       `json:"label,omitempty"`
	Confidence Confidence   `json:"confidence,omitempty"`
	Meta       value.Object `json:"meta,omitempty"`
	View       string       `json:"view,omitempty"`
	Aggregate  bool         `json:"aggregate,omitempty"`
	Weight     int          `json:"weight,omitempty"`
}

// Key is the composite deduplication key (source, type, target).
type Key struct {
	Source string
	Type   EdgeType
	Target string
}

// Key returns the edge's deduplication key.
func (e Edge) Key() Key {
	return Key{Source: e.Source, Type: e.Type, Target: e.Target}
}

// EdgeID synthesizes the conventional edge id "<source>-<type>-<target>".
func EdgeID(source string, typ EdgeType, target string) string {
	return source + "-" + string(typ) + "-" + target
}

// Graph is the canonical, fully laid-out project graph.
// Node ids are unique and every edge endpoint names a node in Nodes.
type Graph struct {
	SchemaVersion string `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	Nodes         []Node `json:"nodes"`
	Edges         []Edge `json:"edges"`
}

// New creates an empty graph stamped with generatedAt.
func New(generatedAt string) *Graph {
	return &Graph{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt,
		Nodes:         []Node{},
		Edges:         []Edge{},
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}
