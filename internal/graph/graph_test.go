package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specgraph/internal/value"
)

func sampleGraph(generatedAt string) *Graph {
	g := New(generatedAt)
	g.Nodes = append(g.Nodes,
		Node{ID: "Ingest", Kind: KindPhase, Label: "Ingest", ChildrenCount: 1},
		Node{
			ID:       "m1",
			Kind:     KindModule,
			Label:    "Module One",
			Phase:    "Ingest",
			Parent:   "Ingest",
			Meta:     value.Object{{Key: "z", Value: value.NewInt(1)}, {Key: "a", Value: value.String("x")}},
			Position: &Point{X: 80, Y: 200},
		},
	)
	g.Edges = append(g.Edges, Edge{
		ID:         EdgeID("Ingest", EdgePhaseContains, "m1"),
		Source:     "Ingest",
		Target:     "m1",
		Type:       EdgePhaseContains,
		Confidence: ConfidenceAuto,
	})
	return g
}

func TestNodeJSONOmitsEmptyFields(t *testing.T) {
	out, err := json.Marshal(Node{ID: "doc.a.md", Kind: KindDoc, Label: "a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"doc.a.md","type":"Doc","label":"a"}`, string(out))
}

func TestNodeJSONKeepsMetaOrder(t *testing.T) {
	g := sampleGraph("2026-01-01T00:00:00Z")
	out, err := json.Marshal(g.Nodes[1])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"meta":{"z":1,"a":"x"}`)
	assert.Contains(t, string(out), `"position":{"x":80,"y":200}`)
}

func TestGraphEnvelopeKeys(t *testing.T) {
	env, err := sampleGraph("2026-01-01T00:00:00Z").Envelope()
	require.NoError(t, err)
	assert.Equal(t, []string{"schema_version", "generated_at", "nodes", "edges"}, env.Keys())
	assert.Equal(t, SchemaVersion, env.String("schema_version", ""))
}

func TestEmptyGraphMarshalsEmptyArrays(t *testing.T) {
	out, err := json.Marshal(New("t"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":"1.0.0","generated_at":"t","nodes":[],"edges":[]}`, string(out))
}

func TestFingerprintIgnoresGeneratedAt(t *testing.T) {
	a, err := sampleGraph("2026-01-01T00:00:00Z").Fingerprint()
	require.NoError(t, err)
	b, err := sampleGraph("2027-06-30T12:00:00Z").Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	g := sampleGraph("t")
	before, err := g.Fingerprint()
	require.NoError(t, err)

	g.Nodes[1].Position = &Point{X: 300, Y: 200}
	after, err := g.Fingerprint()
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestFingerprintIgnoresMetaMemberOrder(t *testing.T) {
	a := sampleGraph("t")
	b := sampleGraph("t")
	b.Nodes[1].Meta = value.Object{{Key: "a", Value: value.String("x")}, {Key: "z", Value: value.NewInt(1)}}

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestConfidenceRank(t *testing.T) {
	assert.Greater(t, ConfidenceManual.Rank(), ConfidenceAuto.Rank())
	assert.Greater(t, ConfidenceAuto.Rank(), ConfidenceLow.Rank())
	assert.Greater(t, ConfidenceLow.Rank(), Confidence("").Rank())
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := sampleGraph("t").Nodes[1]
	n.StatusFlags = []string{"recorded"}
	c := n.Clone()

	c.Position.X = 1
	c.StatusFlags[0] = "changed"
	c.Meta.Set("a", value.String("changed"))

	assert.Equal(t, 80.0, n.Position.X)
	assert.Equal(t, "recorded", n.StatusFlags[0])
	assert.Equal(t, "x", n.Meta.String("a", ""))
	assert.True(t, n.HasFlag("recorded"))
}

func TestGraphNodeLookup(t *testing.T) {
	g := sampleGraph("t")
	n, ok := g.Node("m1")
	require.True(t, ok)
	assert.Equal(t, "Module One", n.Label)

	_, ok = g.Node("missing")
	assert.False(t, ok)
	assert.False(t, g.IsEmpty())
	assert.True(t, (*Graph)(nil).IsEmpty())
}
