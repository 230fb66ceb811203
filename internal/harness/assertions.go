package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/store"
)

// Target is what assertions inspect. *session.Session satisfies it.
type Target interface {
	Graph() *graph.Graph
	Project(view, focus string) *graph.Graph
	Root() string
	History(ctx context.Context, all bool, limit int) ([]store.Edit, error)
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Scope    string   // "graph" or the projected view
	Nodes    []string // node ids in scope, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.Scope)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Nodes) > 0 {
		fmt.Fprintf(&buf, "  Nodes: %s\n", strings.Join(e.Nodes, ", "))
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(ctx context.Context, target Target, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(ctx, target, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(ctx context.Context, target Target, a Assertion) error {
	switch a.Type {
	case AssertPersistedEdge:
		return assertPersistedEdge(target.Root(), a)
	case AssertJournalCount:
		edits, err := target.History(ctx, true, 0)
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		if len(edits) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Scope:    "journal",
				Expected: fmt.Sprintf("%d edits", a.Count),
				Actual:   fmt.Sprintf("%d edits", len(edits)),
			}
		}
		return nil
	}

	g, scope := target.Graph(), "graph"
	if a.View != "" {
		g, scope = target.Project(a.View, a.Focus), a.View
	}
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Scope: scope, Expected: expected, Actual: actual, Nodes: nodeIDs(g)}
	}

	switch a.Type {
	case AssertNodePresent, AssertNodeAbsent:
		_, found := g.Node(a.ID)
		if want := a.Type == AssertNodePresent; found != want {
			return fail(fmt.Sprintf("node %q present=%t", a.ID, want), fmt.Sprintf("present=%t", found))
		}
	case AssertEdgePresent, AssertEdgeAbsent:
		e, found := findEdge(g, a.ID)
		if want := a.Type == AssertEdgePresent; found != want {
			return fail(fmt.Sprintf("edge %q present=%t", a.ID, want), fmt.Sprintf("present=%t", found))
		}
		if found && a.Type == AssertEdgePresent && a.Confidence != "" && string(e.Confidence) != a.Confidence {
			return fail(fmt.Sprintf("edge %q confidence %s", a.ID, a.Confidence), fmt.Sprintf("confidence %s", e.Confidence))
		}
	case AssertNodeCount:
		if len(g.Nodes) != a.Count {
			return fail(fmt.Sprintf("%d nodes", a.Count), fmt.Sprintf("%d nodes", len(g.Nodes)))
		}
	case AssertEdgeCount:
		if len(g.Edges) != a.Count {
			return fail(fmt.Sprintf("%d edges", a.Count), fmt.Sprintf("%d edges", len(g.Edges)))
		}
	case AssertPosition:
		n, ok := g.Node(a.ID)
		want := fmt.Sprintf("node %q at (%g, %g)", a.ID, *a.X, *a.Y)
		if !ok {
			return fail(want, "node not found")
		}
		if n.Position == nil {
			return fail(want, "no position")
		}
		if n.Position.X != *a.X || n.Position.Y != *a.Y {
			return fail(want, fmt.Sprintf("(%g, %g)", n.Position.X, n.Position.Y))
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertPersistedEdge(root string, a Assertion) error {
	m, err := meta.NewStore().LoadChecked(root)
	if err != nil {
		return fmt.Errorf("reload metadata: %w", err)
	}
	ids := make([]string, 0, len(m.Edges))
	for _, e := range m.Edges {
		if e.Key() == a.ID {
			return nil
		}
		ids = append(ids, e.Key())
	}
	return &AssertionError{
		Type:     a.Type,
		Scope:    meta.RelPath,
		Expected: fmt.Sprintf("edge %q", a.ID),
		Actual:   fmt.Sprintf("edges [%s]", strings.Join(ids, ", ")),
	}
}

func findEdge(g *graph.Graph, id string) (graph.Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return graph.Edge{}, false
}

func nodeIDs(g *graph.Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
