package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/store"
	"github.com/roach88/specgraph/internal/testutil"
	"github.com/roach88/specgraph/internal/value"
)

// minimalProject has one module and one contract and no metadata document.
var minimalProject = map[string]string{
	"docs/00_overview.md":                  "# Overview\n",
	"specs/modules/m1/spec.md":             "# M1\n",
	"specs/contract_output/c1.schema.json": `{"title": "C1"}`,
}

func openProject(t *testing.T, files map[string]string, opts ...Option) (*Session, string) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteProject(t, root, files)
	clock := testutil.NewFixedClock(testutil.Epoch)
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	s, err := Open(context.Background(), root, opts...)
	require.NoError(t, err)
	return s, root
}

func decodeView(t *testing.T, payload string) *graph.Graph {
	t.Helper()
	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(payload), &g))
	return &g
}

func hasEdge(g *graph.Graph, id string) bool {
	for _, e := range g.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

func TestOpenSampleProject(t *testing.T) {
	s, root := openProject(t, testutil.SampleProject)

	assert.True(t, s.Layout().Recognized)
	assert.Equal(t, root, s.Root())
	g := s.Graph()
	assert.Len(t, g.Nodes, 11)
	assert.Len(t, g.Edges, 8)
	assert.Equal(t, "2026-01-01T00:00:00Z", g.GeneratedAt)
	for _, n := range g.Nodes {
		assert.NotNil(t, n.Position, "node %s laid out", n.ID)
	}
}

func TestOpenDegradedProject(t *testing.T) {
	s, _ := openProject(t, map[string]string{"README.txt": "nothing here\n"})

	assert.False(t, s.Layout().Recognized)
	assert.NotEmpty(t, s.Layout().Warnings)
	require.Len(t, s.Graph().Nodes, len(meta.DefaultPhaseIDs))
	assert.Empty(t, s.Graph().Edges)
}

func TestEditEdgeScenario(t *testing.T) {
	s, root := openProject(t, minimalProject)
	require.False(t, hasEdge(s.Graph(), "m1-produces-c1"))

	ok := s.EditEdge(meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1", Type: "produces"})
	require.True(t, ok)

	payload, err := s.View("Pipeline", "")
	require.NoError(t, err)
	pipeline := decodeView(t, payload)
	require.True(t, hasEdge(pipeline, "m1-produces-c1"))
	for _, e := range pipeline.Edges {
		if e.ID == "m1-produces-c1" {
			assert.Equal(t, graph.ConfidenceManual, e.Confidence)
		}
	}

	reloaded := meta.NewStore().Load(root)
	require.Len(t, reloaded.Edges, 1)
	assert.Equal(t, meta.Edge{ID: "m1-produces-c1", Source: "m1", Target: "c1", Type: graph.EdgeProduces}, reloaded.Edges[0])
}

func TestEditEdgeRejectedLeavesEverythingUntouched(t *testing.T) {
	s, root := openProject(t, minimalProject)
	before := s.Graph()

	calls := 0
	s.Subscribe(func(*graph.Graph) { calls++ })

	assert.False(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1"}))
	assert.False(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionRemove, Source: "m1", Target: "c1", Type: "produces"}))

	assert.Same(t, before, s.Graph(), "no rebuild")
	assert.Zero(t, calls)
	_, err := os.Stat(filepath.Join(root, "meta", "pipeline_graph.json"))
	assert.True(t, os.IsNotExist(err), "nothing saved")
}

func TestEditEdgeUpdateAndRemove(t *testing.T) {
	s, _ := openProject(t, minimalProject)
	require.True(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1", Type: "produces"}))

	require.True(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionUpdate, ID: "m1-produces-c1", Source: "c1", Target: "m1", Type: "consumes", Label: "reads"}))
	e := s.MetaGraph().Edges[0]
	assert.Equal(t, "m1-produces-c1", e.ID)
	assert.Equal(t, "reads", e.Label)
	assert.Equal(t, graph.EdgeConsumes, e.Type)

	require.True(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionRemove, ID: "m1-produces-c1", Source: "c1", Target: "m1", Type: "consumes"}))
	assert.Empty(t, s.MetaGraph().Edges)
	assert.False(t, hasEdge(s.Graph(), "m1-produces-c1"))
}

func TestEditEdgeSaveFailureKeepsInMemoryEdit(t *testing.T) {
	files := map[string]string{"meta": "a file where the directory should be\n"}
	for k, v := range minimalProject {
		files[k] = v
	}
	s, _ := openProject(t, files)

	res := s.ApplyEdge(context.Background(), meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1", Type: "produces"})
	assert.True(t, res.Applied)
	assert.False(t, res.Saved)
	assert.NotEmpty(t, res.Error)
	assert.True(t, hasEdge(s.Graph(), "m1-produces-c1"), "graph reflects the in-memory edit")
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s, _ := openProject(t, minimalProject)

	var seen []*graph.Graph
	var order []string
	unsubscribe := s.Subscribe(func(g *graph.Graph) {
		seen = append(seen, g)
		order = append(order, "first")
	})
	s.Subscribe(func(*graph.Graph) { order = append(order, "second") })

	require.True(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1", Type: "produces"}))
	require.Len(t, seen, 1)
	assert.Same(t, s.Graph(), seen[0])
	assert.Equal(t, []string{"first", "second"}, order)

	unsubscribe()
	s.Rebuild()
	assert.Len(t, seen, 1)
	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestRebuildFingerprintIsStable(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)
	fp1, err := s.Fingerprint()
	require.NoError(t, err)

	s.Rebuild()
	fp2, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestViewDefaultsAndCallback(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)

	def, err := s.View("", "")
	require.NoError(t, err)
	pipeline, err := s.View("Pipeline", "")
	require.NoError(t, err)
	assert.Equal(t, pipeline, def)

	var got string
	s.ViewCallback("Summary", "", func(payload string) { got = payload })
	summary := decodeView(t, got)
	assert.LessOrEqual(t, len(summary.Nodes), 12)
	assert.Equal(t, "category.Docs", summary.Nodes[0].ID)
}

func TestViewIsCompactJSON(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)
	payload, err := s.View("Docs", "")
	require.NoError(t, err)
	assert.NotContains(t, payload, "\n")
	assert.Contains(t, payload, `"schema_version":"1.0.0"`)
}

func TestGraphJSONEnvelope(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)
	payload, err := s.GraphJSON()
	require.NoError(t, err)

	obj, err := value.ParseObject([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"schema_version", "generated_at", "nodes", "edges"}, obj.Keys())
}

func TestMeta(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)
	info := s.Meta()

	assert.Equal(t, "1.0.0", info.SchemaVersion)
	assert.Equal(t, []PhaseInfo{{ID: "Ingest", Label: "Ingest", Order: 10}, {ID: "Render", Label: "Render", Order: 20}}, info.Phases)
	assert.Empty(t, info.Positions)

	raw, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":"1.0.0","phases":[{"id":"Ingest","label":"Ingest","order":10},{"id":"Render","label":"Render","order":20}],"positions":{}}`, string(raw))
}

func TestNodeDetail(t *testing.T) {
	s, _ := openProject(t, testutil.SampleProject)

	mod, err := s.NodeDetail("graph_builder")
	require.NoError(t, err)
	assert.Equal(t, "Module", mod.String("type", ""))
	assert.Equal(t, []string{"contract_input"}, mod.Strings("inputs"))
	assert.Equal(t, []string{"graph"}, mod.Strings("outputs"))
	assert.Equal(t, []string{"gate.layout_ok"}, mod.Strings("verifies"))
	assert.Equal(t, []string{"docs/00_overview.md"}, mod.Strings("trace_links"))

	scanner, err := s.NodeDetail("project_scanner")
	require.NoError(t, err)
	assert.True(t, scanner.Has("inputs"), "empty lists are still present")
	assert.Empty(t, scanner.Strings("inputs"))

	contract, err := s.NodeDetail("graph")
	require.NoError(t, err)
	assert.Equal(t, "specs/contract_output/graph.schema.json", contract.String("schema_path", ""))
	assert.False(t, contract.Has("inputs"))

	_, err = s.NodeDetail("nope")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestPreview(t *testing.T) {
	s, root := openProject(t, testutil.SampleProject)

	assert.Equal(t, "# Overview\n\nPipeline overview.\n", s.Preview("docs/00_overview.md"))
	assert.Equal(t, "# Overview\n\nPipeline overview.\n", s.Preview(filepath.Join(root, "docs", "00_overview.md")))
	assert.Empty(t, s.Preview("docs/missing.md"))
	assert.Empty(t, s.Preview("docs"))
	assert.Empty(t, s.Preview(""))
}

func TestPinAndUnpinNode(t *testing.T) {
	s, root := openProject(t, testutil.SampleProject)
	n, ok := s.Graph().Node("project_scanner")
	require.True(t, ok)
	auto := *n.Position

	require.True(t, s.PinNode("project_scanner", 5, 6))
	n, _ = s.Graph().Node("project_scanner")
	assert.Equal(t, graph.Point{X: 5, Y: 6}, *n.Position)
	assert.Equal(t, graph.Point{X: 5, Y: 6}, meta.NewStore().Load(root).Positions["project_scanner"])

	require.True(t, s.UnpinNode("project_scanner"))
	n, _ = s.Graph().Node("project_scanner")
	assert.Equal(t, auto, *n.Position)

	assert.False(t, s.UnpinNode("project_scanner"))
	assert.False(t, s.PinNode("", 1, 1))
}

func TestJournalRecordsOutcomes(t *testing.T) {
	j, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	s, _ := openProject(t, minimalProject, WithJournal(j))
	require.NotEmpty(t, s.JournalID())

	require.True(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionAdd, Source: "m1", Target: "c1", Type: "produces"}))
	require.False(t, s.EditEdge(meta.EdgeOp{Action: meta.ActionRemove, Source: "x", Target: "y", Type: "produces"}))
	require.True(t, s.PinNode("m1", 1, 2))

	ctx := context.Background()
	edits, err := s.History(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, edits, 3)

	assert.Equal(t, store.KindEdge, edits[0].Kind)
	assert.True(t, edits[0].Applied)
	assert.True(t, edits[0].Saved)
	assert.JSONEq(t, `{"action":"add","source":"m1","target":"c1","type":"produces"}`, string(edits[0].Op))

	assert.False(t, edits[1].Applied)
	assert.False(t, edits[1].Saved)
	assert.Equal(t, edits[0].Fingerprint, edits[1].Fingerprint, "rejected edits do not change the graph")

	assert.Equal(t, store.KindPosition, edits[2].Kind)
	fp, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, edits[2].Fingerprint)
}

func TestHistoryWithoutJournal(t *testing.T) {
	s, _ := openProject(t, minimalProject)
	edits, err := s.History(context.Background(), true, 0)
	require.NoError(t, err)
	assert.NotNil(t, edits)
	assert.Empty(t, edits)
}
