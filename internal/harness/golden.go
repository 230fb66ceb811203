package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// canonicalJSON renders a projection as canonical JSON so golden files are
// byte-stable.
func canonicalJSON(g *graph.Graph) ([]byte, error) {
	env, err := g.Envelope()
	if err != nil {
		return nil, err
	}
	return value.MarshalCanonical(env)
}

// RunWithGolden executes a scenario, fails t on any step or assertion
// error, and compares every golden view against
// testdata/golden/<scenario>.<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares the snapshots of an existing result against their
// golden files without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, gv := range scenario.Golden {
		name := GoldenName(scenario, gv)
		data, ok := result.Snapshots[name]
		if !ok {
			t.Errorf("no snapshot for golden view %s", name)
			continue
		}
		g.Assert(t, name, data)
	}
}
