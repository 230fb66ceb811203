package builder

import (
	"path"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/project"
)

// Resolver maps a free-text reference from a module spec (an input, output,
// verifies or trace-link entry) to a node id.
//
// Resolve returns the id to link and the confidence of the match. When ok is
// false the reference is unresolved: id is the placeholder id to synthesize.
type Resolver interface {
	Resolve(ref string, idx *Index) (id string, conf graph.Confidence, ok bool)
}

// Index is the lookup table a Resolver matches against: the provisional
// node set, before placeholders are synthesized.
type Index struct {
	ids    map[string]bool
	paths  map[string]string // exact node path -> id
	folded map[string]string // folded id, path or doc-relative path -> id
}

// foldKey case-folds s. A Caser is stateful, so each call gets its own.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

// NewIndex indexes nodes. Earlier nodes win lookups on collisions.
func NewIndex(nodes []graph.Node) *Index {
	idx := &Index{
		ids:    make(map[string]bool, len(nodes)),
		paths:  make(map[string]string),
		folded: make(map[string]string),
	}
	for _, n := range nodes {
		idx.ids[n.ID] = true
	}
	for _, n := range nodes {
		idx.addFolded(n.ID, n.ID)
		if n.Path != "" {
			if _, ok := idx.paths[n.Path]; !ok {
				idx.paths[n.Path] = n.ID
			}
			idx.addFolded(n.Path, n.ID)
		}
		if rel, ok := strings.CutPrefix(n.ID, project.DocIDPrefix); ok && n.Kind == graph.KindDoc {
			idx.addFolded(rel, n.ID)
		}
	}
	return idx
}

func (idx *Index) addFolded(key, id string) {
	k := foldKey(key)
	if _, ok := idx.folded[k]; !ok {
		idx.folded[k] = id
	}
}

// Has reports whether id is a known node.
func (idx *Index) Has(id string) bool {
	return idx.ids[id]
}

// ExactResolver is the default Resolver.
//
//   - exact node id or exact node path: auto
//   - match after cleaning (whitespace, backticks, markdown link syntax,
//     "./" prefix) and case folding, against ids, paths and doc-relative
//     paths: low
//   - otherwise unresolved, with the cleaned text as placeholder id: low
type ExactResolver struct{}

// Resolve implements Resolver.
func (ExactResolver) Resolve(ref string, idx *Index) (string, graph.Confidence, bool) {
	if idx.Has(ref) {
		return ref, graph.ConfidenceAuto, true
	}
	if id, ok := idx.paths[ref]; ok {
		return id, graph.ConfidenceAuto, true
	}

	clean := CleanRef(ref)
	if clean == "" {
		clean = strings.TrimSpace(ref)
	}
	for _, key := range []string{clean, path.Clean(clean), project.DocIDPrefix + clean} {
		if id, ok := idx.folded[foldKey(key)]; ok {
			return id, graph.ConfidenceLow, true
		}
	}
	return clean, graph.ConfidenceLow, false
}

// CleanRef strips presentation noise from a reference: surrounding
// whitespace and backticks, markdown link syntax ("[text](target)" yields
// target) and a leading "./".
func CleanRef(ref string) string {
	s := strings.TrimSpace(ref)
	if open := strings.Index(s, "]("); open > 0 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, ")") {
		s = s[open+2 : len(s)-1]
	}
	s = strings.Trim(s, "` ")
	s = strings.TrimPrefix(s, "./")
	return s
}
