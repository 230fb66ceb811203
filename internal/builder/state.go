package builder

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// state accumulates nodes and deduplicated edges during one Build.
type state struct {
	nodes   []graph.Node
	nodeIDs map[string]bool

	slots []graph.Edge
	keys  map[graph.Key]int // dedup key -> slot index

	refLabels map[string]string // unresolved id -> original reference
}

func newState() *state {
	return &state{
		nodeIDs:   make(map[string]bool),
		keys:      make(map[graph.Key]int),
		refLabels: make(map[string]string),
	}
}

func (s *state) has(id string) bool {
	return s.nodeIDs[id]
}

// addNode appends n unless its id is taken; the first node with an id wins.
func (s *state) addNode(n graph.Node) {
	if s.nodeIDs[n.ID] {
		slog.Warn("duplicate node id dropped", "id", n.ID, "kind", n.Kind)
		return
	}
	s.nodeIDs[n.ID] = true
	s.nodes = append(s.nodes, n)
}

// addAutoEdge adds an edge between a module and a resolved reference.
// refIsSource puts the reference on the source side (consumes).
func (s *state) addAutoEdge(module string, typ graph.EdgeType, r resolved, ref string, refIsSource bool) {
	if r.id == "" {
		return
	}
	src, tgt := module, r.id
	if refIsSource {
		src, tgt = r.id, module
	}

	e := graph.Edge{
		ID:         graph.EdgeID(src, typ, tgt),
		Source:     src,
		Target:     tgt,
		Type:       typ,
		Confidence: r.conf,
	}
	if ref != r.id {
		e.Meta = value.Object{{Key: "ref", Value: value.String(ref)}}
	}
	if !r.ok {
		if _, seen := s.refLabels[r.id]; !seen {
			s.refLabels[r.id] = ref
		}
	}
	s.addEdge(e)
}

// addEdge deduplicates by (source, type, target). A later edge replaces the
// kept one only with strictly higher confidence, and takes its slot.
func (s *state) addEdge(e graph.Edge) {
	k := e.Key()
	if i, ok := s.keys[k]; ok {
		if e.Confidence.Rank() > s.slots[i].Confidence.Rank() {
			s.slots[i] = e
		}
		return
	}
	s.keys[k] = len(s.slots)
	s.slots = append(s.slots, e)
}

func (s *state) edges() []graph.Edge {
	return slices.Clone(s.slots)
}

// placeholders returns one Gate node per dangling edge endpoint, by id.
func (s *state) placeholders() []graph.Node {
	seen := make(map[string]bool)
	var gates []graph.Node
	for _, e := range s.slots {
		for _, id := range []string{e.Source, e.Target} {
			if s.nodeIDs[id] || seen[id] {
				continue
			}
			seen[id] = true
			label := s.refLabels[id]
			if label == "" {
				label = id
			}
			gates = append(gates, graph.Node{
				ID:          id,
				Kind:        graph.KindGate,
				Label:       label,
				StatusFlags: []string{FlagPlaceholder},
				Category:    DefaultCategories[graph.KindGate],
			})
		}
	}
	slices.SortFunc(gates, func(a, b graph.Node) int { return cmp.Compare(a.ID, b.ID) })
	return gates
}
