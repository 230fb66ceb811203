package view

import (
	"math"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// Summary defaults.
var (
	DefaultCategories = []string{"Docs", "Modules", "Contracts", "Meta", "Runs", "Gates"}
	DefaultPinned     = []string{"module.graph_builder", "module.project_scanner"}
)

// Summary geometry.
const (
	summaryColumns  = 3
	summaryRadius   = 110.0
	summarySpokes   = 6
	defaultCategory = "Modules"
	categoryPrefix  = "category."
	categoryTier    = "core"
)

// CategoryID returns the id of the Summary node for category.
func CategoryID(category string) string {
	return categoryPrefix + category
}

// summary builds the Summary overview from ui.summary:
// categories, grid{gap_x, gap_y, origin{x, y}} and pinned.
func summary(g *graph.Graph, ui value.Object) ([]graph.Node, []graph.Edge) {
	cfg := ui.Object("summary")
	categories := cfg.Strings("categories")
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	grid := cfg.Object("grid")
	gapX := grid.Float("gap_x", 520)
	gapY := grid.Float("gap_y", 320)
	origin := grid.Object("origin")
	ox, oy := origin.Float("x", 0), origin.Float("y", 0)

	pinned := cfg.Strings("pinned")
	if len(pinned) == 0 {
		pinned = DefaultPinned
	}
	pinnedSet := make(map[string]bool, len(pinned))
	for _, id := range pinned {
		pinnedSet[id] = true
	}

	var nodes []graph.Node
	centers := make(map[string]graph.Point, len(categories))
	for i, cat := range categories {
		if len(nodes) >= SummaryMaxNodes {
			break
		}
		p := graph.Point{
			X: ox + float64(i%summaryColumns)*gapX,
			Y: oy + float64(i/summaryColumns)*gapY,
		}
		if _, dup := centers[cat]; !dup {
			centers[cat] = p
		}
		nodes = append(nodes, graph.Node{
			ID:       CategoryID(cat),
			Kind:     graph.KindCategory,
			Label:    TruncateLabel(cat),
			View:     Summary,
			Position: &p,
			Tier:     categoryTier,
			Mutable:  true,
			Pinned:   true,
			Category: cat,
		})
	}

	perCategory := make(map[string]int)
	for _, n := range g.Nodes {
		if len(nodes) >= SummaryMaxNodes {
			break
		}
		if !n.Pinned && !pinnedSet[n.ID] {
			continue
		}
		c := present(n)
		c.View = Summary

		cat := n.Category
		if cat == "" {
			cat = defaultCategory
		}
		base, ok := centers[cat]
		if !ok {
			base = graph.Point{X: ox, Y: oy}
		}
		k := perCategory[cat]
		perCategory[cat] = k + 1
		angle := float64(k%summarySpokes) * (2 * math.Pi / summarySpokes)
		c.Position = &graph.Point{
			X: round(base.X + summaryRadius*math.Cos(angle)),
			Y: round(base.Y + summaryRadius*math.Sin(angle)),
		}
		nodes = append(nodes, c)
	}

	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	var edges []graph.Edge
	for _, e := range g.Edges {
		if len(edges) >= SummaryMaxEdges {
			break
		}
		if !e.Aggregate || !ids[e.Source] || !ids[e.Target] {
			continue
		}
		if e.View != "" && !equalFold(e.View, Summary) {
			continue
		}
		edges = append(edges, cloneEdge(e))
	}
	return nodes, edges
}

// round trims floating-point noise from trigonometric placement.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
