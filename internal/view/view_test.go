package view

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

func ids(nodes []graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func edgeIDs(edges []graph.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func mixedGraph() *graph.Graph {
	g := graph.New("2026-01-01T00:00:00Z")
	g.Nodes = []graph.Node{
		{ID: "Ingest", Kind: graph.KindPhase, Label: "Ingest", View: "Hidden", Category: "Meta"},
		{ID: "m1", Kind: graph.KindModule, Label: "Module One", View: "Docs", Category: "Modules"},
		{ID: "c1", Kind: graph.KindContract, Label: "Contract", Category: "Contracts"},
		{ID: "d1", Kind: graph.KindDoc, Label: "A very long documentation title", View: "Docs", Category: "Docs"},
		{ID: "d2", Kind: graph.KindDoc, Label: "Notes", View: "Pipeline"},
		{ID: "x1", Kind: graph.KindDoc, Label: "Custom", View: "Contracts", Category: "Contracts"},
	}
	g.Edges = []graph.Edge{
		{ID: "m1-produces-c1", Source: "m1", Target: "c1", Type: graph.EdgeProduces},
		{ID: "m1-docs_link-d1", Source: "m1", Target: "d1", Type: graph.EdgeDocsLink},
		{ID: "m1-docs_link-d2", Source: "m1", Target: "d2", Type: graph.EdgeDocsLink, View: "Docs"},
		{ID: "c1-consumes-m1", Source: "c1", Target: "m1", Type: graph.EdgeConsumes, View: "Other"},
	}
	return g
}

func TestPipelineViewOverridesNodeViews(t *testing.T) {
	p := Project(mixedGraph(), nil, "Pipeline", "")

	assert.Equal(t, []string{"Ingest", "m1", "c1", "d2"}, ids(p.Nodes))
	assert.Equal(t, []string{"m1-produces-c1"}, edgeIDs(p.Edges))
	assert.Equal(t, "2026-01-01T00:00:00Z", p.GeneratedAt)
	assert.Equal(t, graph.SchemaVersion, p.SchemaVersion)
}

func TestDocsViewKeepsOnlyDocsLinks(t *testing.T) {
	p := Project(mixedGraph(), nil, "docs", "")

	assert.Equal(t, []string{"m1", "c1", "d1", "d2", "x1"}, ids(p.Nodes))
	assert.Equal(t, []string{"m1-docs_link-d1", "m1-docs_link-d2"}, edgeIDs(p.Edges))
}

func TestContractsViewIncludesContractCategory(t *testing.T) {
	p := Project(mixedGraph(), nil, "Contracts", "")
	assert.Equal(t, []string{"c1", "x1"}, ids(p.Nodes))
	assert.Empty(t, p.Edges)
}

func TestCustomViewMatchesTagsOnly(t *testing.T) {
	p := Project(mixedGraph(), nil, "hidden", "")
	assert.Equal(t, []string{"Ingest", "c1"}, ids(p.Nodes))
}

func TestFocusFiltersByCategorySubstring(t *testing.T) {
	p := Project(mixedGraph(), nil, "Pipeline", "MOD")
	assert.Equal(t, []string{"m1"}, ids(p.Nodes))

	p = Project(mixedGraph(), nil, "Pipeline", "ont")
	assert.Equal(t, []string{"c1"}, ids(p.Nodes), "uncategorized d2 is dropped under focus")
}

func TestLabelsAreTruncatedWithoutTouchingCanonical(t *testing.T) {
	g := mixedGraph()
	p := Project(g, nil, "Docs", "")

	var d1 graph.Node
	for _, n := range p.Nodes {
		if n.ID == "d1" {
			d1 = n
		}
	}
	assert.Equal(t, "A very long docume…", d1.Label)
	assert.Equal(t, "A very long documentation title", g.Nodes[3].Label)
	for _, n := range p.Nodes {
		assert.LessOrEqual(t, utf8.RuneCountInString(n.Label), MaxLabelRunes+1)
	}
}

func TestTruncateLabelCountsRunes(t *testing.T) {
	assert.Equal(t, "exactly eighteen!!", TruncateLabel("exactly eighteen!!"))
	assert.Equal(t, "éééééééééééééééééé…", TruncateLabel("éééééééééééééééééééé"))
}

func TestDefaultViewFromUI(t *testing.T) {
	ui := value.Object{{Key: "default_view", Value: value.String("Contracts")}}
	assert.Equal(t, []string{"c1", "x1"}, ids(Project(mixedGraph(), ui, "", "").Nodes))
	assert.Len(t, Project(mixedGraph(), nil, "", "").Nodes, 4, "Pipeline without config")
}

func TestProjectionIsDeterministic(t *testing.T) {
	g := mixedGraph()
	assert.Equal(t, Project(g, nil, "Docs", "doc"), Project(g, nil, "Docs", "doc"))
}

func TestNamedViewHardCaps(t *testing.T) {
	g := graph.New("t")
	for i := 0; i < 1000; i++ {
		g.Nodes = append(g.Nodes, graph.Node{ID: fmt.Sprintf("n%04d", i), Kind: graph.KindModule})
	}
	for i := 0; i < 999; i++ {
		g.Edges = append(g.Edges, graph.Edge{
			ID:     fmt.Sprintf("e%04d", i),
			Source: fmt.Sprintf("n%04d", i%100),
			Target: fmt.Sprintf("n%04d", (i+1)%100),
			Type:   graph.EdgeProduces,
		})
	}

	p := Project(g, nil, "Pipeline", "")
	assert.Len(t, p.Nodes, MaxNodes)
	assert.Equal(t, "n0799", p.Nodes[MaxNodes-1].ID)
	assert.Len(t, p.Edges, EdgeSoftCap)
	assert.LessOrEqual(t, len(p.Edges), MaxEdges)
}

func TestCappedNodesLeaveNoDanglingEdges(t *testing.T) {
	g := graph.New("t")
	for i := 0; i < MaxNodes+1; i++ {
		g.Nodes = append(g.Nodes, graph.Node{ID: fmt.Sprintf("n%04d", i), Kind: graph.KindModule})
	}
	g.Edges = []graph.Edge{{ID: "tail", Source: "n0000", Target: fmt.Sprintf("n%04d", MaxNodes), Type: graph.EdgeProduces}}

	p := Project(g, nil, "Pipeline", "")
	assert.Empty(t, p.Edges)
}

func TestSummaryDefaultCategories(t *testing.T) {
	p := Project(graph.New("t"), nil, "summary", "")

	require.Len(t, p.Nodes, 6)
	assert.Equal(t, []string{
		"category.Docs", "category.Modules", "category.Contracts",
		"category.Meta", "category.Runs", "category.Gates",
	}, ids(p.Nodes))

	want := []graph.Point{{X: 0, Y: 0}, {X: 520, Y: 0}, {X: 1040, Y: 0}, {X: 0, Y: 320}, {X: 520, Y: 320}, {X: 1040, Y: 320}}
	for i, n := range p.Nodes {
		assert.Equal(t, graph.KindCategory, n.Kind)
		assert.Equal(t, Summary, n.View)
		assert.Equal(t, "core", n.Tier)
		assert.True(t, n.Pinned)
		assert.True(t, n.Mutable)
		assert.Equal(t, want[i], *n.Position)
	}
	assert.Empty(t, p.Edges)
}

func TestSummaryPlacesPinnedClonesAroundCategory(t *testing.T) {
	g := graph.New("t")
	g.Nodes = []graph.Node{
		{ID: "a", Kind: graph.KindModule, Label: "A", Pinned: true},
		{ID: "b", Kind: graph.KindModule, Label: "B", Pinned: true, Category: "Modules"},
		{ID: "module.graph_builder", Kind: graph.KindModule, Label: "GB", Category: "Runs"},
		{ID: "skip", Kind: graph.KindModule, Label: "not pinned"},
		{ID: "odd", Kind: graph.KindGate, Label: "X", Pinned: true, Category: "Nowhere"},
	}
	g.Edges = []graph.Edge{
		{ID: "agg", Source: "a", Target: "b", Type: graph.EdgeProduces, Aggregate: true},
		{ID: "plain", Source: "a", Target: "b", Type: graph.EdgeConsumes},
		{ID: "out", Source: "a", Target: "skip", Type: graph.EdgeProduces, Aggregate: true},
	}

	p := Project(g, nil, "Summary", "")

	require.Equal(t, []string{
		"category.Docs", "category.Modules", "category.Contracts",
		"category.Meta", "category.Runs", "category.Gates",
		"a", "b", "module.graph_builder", "odd",
	}, ids(p.Nodes))

	assert.Equal(t, graph.Point{X: 630, Y: 0}, *p.Nodes[6].Position)
	assert.Equal(t, graph.Point{X: 575, Y: 95.262794}, *p.Nodes[7].Position)
	assert.Equal(t, graph.Point{X: 630, Y: 320}, *p.Nodes[8].Position)
	assert.Equal(t, graph.Point{X: 110, Y: 0}, *p.Nodes[9].Position, "unknown category falls back to the grid origin")
	assert.Equal(t, Summary, p.Nodes[6].View)
	assert.Empty(t, g.Nodes[0].View, "canonical node untouched")
	assert.Nil(t, g.Nodes[0].Position)

	assert.Equal(t, []string{"agg"}, edgeIDs(p.Edges))
}

func TestSummaryHardCaps(t *testing.T) {
	g := graph.New("t")
	for i := 0; i < 40; i++ {
		g.Nodes = append(g.Nodes, graph.Node{ID: fmt.Sprintf("p%02d", i), Kind: graph.KindModule, Pinned: true})
	}
	for i := 0; i < 40; i++ {
		g.Edges = append(g.Edges, graph.Edge{
			ID:        fmt.Sprintf("e%02d", i),
			Source:    fmt.Sprintf("p%02d", i%6),
			Target:    fmt.Sprintf("p%02d", (i+1)%6),
			Type:      graph.EdgeProduces,
			Aggregate: true,
		})
	}

	p := Project(g, nil, "Summary", "")
	assert.Len(t, p.Nodes, SummaryMaxNodes)
	assert.Len(t, p.Edges, SummaryMaxEdges)
}

func TestSummaryCustomConfig(t *testing.T) {
	ui, err := value.ParseObject([]byte(`{"summary": {
		"categories": ["One", "Two"],
		"grid": {"gap_x": 100, "gap_y": 50, "origin": {"x": 10, "y": 20}},
		"pinned": ["n1"]
	}}`))
	require.NoError(t, err)

	g := graph.New("t")
	g.Nodes = []graph.Node{{ID: "n1", Kind: graph.KindDoc, Category: "Two"}}

	p := Project(g, ui, "Summary", "")
	require.Equal(t, []string{"category.One", "category.Two", "n1"}, ids(p.Nodes))
	assert.Equal(t, graph.Point{X: 110, Y: 20}, *p.Nodes[1].Position)
	assert.Equal(t, graph.Point{X: 220, Y: 20}, *p.Nodes[2].Position)
}
