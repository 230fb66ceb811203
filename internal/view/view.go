// Package view projects the canonical graph into bounded, view-specific
// payloads for a renderer.
//
// Two modes exist. "Summary" synthesizes one Category node per configured
// category and arranges clones of pinned nodes around them. Every other
// view name filters the canonical graph by node and edge view tags, with
// fixed inclusion overrides for the Pipeline, Docs and Contracts views and
// an optional category focus.
//
// Projections never mutate the canonical graph and are bounded: at most
// MaxNodes nodes and MaxEdges edges, or SummaryMaxNodes/SummaryMaxEdges in
// Summary mode.
package view

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// Well-known views.
const (
	Summary   = "Summary"
	Pipeline  = "Pipeline"
	Docs      = "Docs"
	Contracts = "Contracts"
)

// Payload bounds.
const (
	MaxNodes        = 800
	MaxEdges        = 900
	EdgeSoftCap     = 800
	SummaryMaxNodes = 12
	SummaryMaxEdges = 12
)

// Label presentation.
const (
	MaxLabelRunes = 18
	Ellipsis      = "…"
)

// Project returns the projection of g for view and focus. An empty view
// selects ui.default_view, else Pipeline. The result shares no mutable
// state with g.
func Project(g *graph.Graph, ui value.Object, view, focus string) *graph.Graph {
	if g == nil {
		g = graph.New("")
	}
	if view == "" {
		view = ui.String("default_view", Pipeline)
	}

	out := &graph.Graph{
		SchemaVersion: g.SchemaVersion,
		GeneratedAt:   g.GeneratedAt,
	}
	if IsSummary(view) {
		out.Nodes, out.Edges = summary(g, ui)
	} else {
		out.Nodes, out.Edges = named(g, view, focus)
	}
	if out.Nodes == nil {
		out.Nodes = []graph.Node{}
	}
	if out.Edges == nil {
		out.Edges = []graph.Edge{}
	}
	return out
}

// IsSummary reports whether view selects the Summary overview.
func IsSummary(view string) bool {
	return equalFold(view, Summary)
}

// named filters g for a named view.
func named(g *graph.Graph, view, focus string) ([]graph.Node, []graph.Edge) {
	var nodes []graph.Node
	for _, n := range g.Nodes {
		if !includeNode(n, view) {
			continue
		}
		if focus != "" && (n.Category == "" || !containsFold(n.Category, focus)) {
			continue
		}
		nodes = append(nodes, present(n))
	}
	if len(nodes) > MaxNodes {
		nodes = nodes[:MaxNodes]
	}

	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}

	docsOnly := equalFold(view, Docs)
	var edges []graph.Edge
	for _, e := range g.Edges {
		if e.View != "" && !equalFold(e.View, view) {
			continue
		}
		if !ids[e.Source] || !ids[e.Target] {
			continue
		}
		if docsOnly && e.Type != graph.EdgeDocsLink {
			continue
		}
		edges = append(edges, cloneEdge(e))
		if len(edges) >= EdgeSoftCap {
			break
		}
	}
	if len(edges) > MaxEdges {
		edges = edges[:MaxEdges]
	}
	return nodes, edges
}

// includeNode applies view tags and the per-view kind overrides.
func includeNode(n graph.Node, view string) bool {
	if n.View == "" || equalFold(n.View, view) {
		return true
	}
	switch {
	case equalFold(view, Pipeline):
		switch n.Kind {
		case graph.KindPhase, graph.KindModule, graph.KindContract, graph.KindGate, graph.KindRun:
			return true
		}
	case equalFold(view, Docs):
		return n.Kind == graph.KindDoc
	case equalFold(view, Contracts):
		return n.Kind == graph.KindContract || n.Category == Contracts
	}
	return false
}

// present clones n with its label truncated for display.
func present(n graph.Node) graph.Node {
	c := n.Clone()
	c.Label = TruncateLabel(c.Label)
	return c
}

// TruncateLabel shortens labels over MaxLabelRunes runes to MaxLabelRunes
// runes plus Ellipsis.
func TruncateLabel(label string) string {
	if utf8.RuneCountInString(label) <= MaxLabelRunes {
		return label
	}
	runes := []rune(label)
	return string(runes[:MaxLabelRunes]) + Ellipsis
}

func cloneEdge(e graph.Edge) graph.Edge {
	e.Meta = e.Meta.Clone()
	return e
}

func equalFold(a, b string) bool {
	return cases.Fold().String(a) == cases.Fold().String(b)
}

func containsFold(s, substr string) bool {
	return strings.Contains(cases.Fold().String(s), cases.Fold().String(substr))
}
