package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/specgraph/internal/session"
	"github.com/roach88/specgraph/internal/store"
	"github.com/roach88/specgraph/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory holding the project and
// a journal database, both removed afterwards. The session clock is fixed at
// testutil.Epoch so that projections are reproducible.
//
// Execution flow:
//  1. Write the project files
//  2. Open the journal and the session
//  3. Apply steps, checking their expect clauses
//  4. Evaluate assertions and capture golden snapshots
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "specgraph-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	root := filepath.Join(dir, "project")
	if err := writeProject(root, scenario); err != nil {
		return nil, err
	}

	journal, err := store.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	clock := testutil.NewFixedClock(testutil.Epoch)
	sess, err := session.Open(ctx, root, session.WithClock(clock.Now), session.WithJournal(journal))
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	result := NewResult()
	executeSteps(ctx, sess, scenario.Steps, result)

	for _, msg := range EvaluateAssertions(ctx, sess, scenario.Assertions) {
		result.AddError(msg)
	}

	for _, gv := range scenario.Golden {
		data, err := canonicalJSON(sess.Project(gv.View, gv.Focus))
		if err != nil {
			return nil, fmt.Errorf("golden %s: %w", gv.Name, err)
		}
		result.Snapshots[GoldenName(scenario, gv)] = data
	}

	if fp, err := sess.Fingerprint(); err == nil {
		result.Fingerprint = fp
	}
	return result, nil
}

// GoldenName is the golden file name (without suffix) for a view of scenario.
func GoldenName(scenario *Scenario, gv GoldenView) string {
	return scenario.Name + "." + gv.Name
}

func executeSteps(ctx context.Context, sess *session.Session, steps []Step, result *Result) {
	for i, step := range steps {
		var (
			res     session.EditResult
			outcome = StepOutcome{Index: i}
		)
		if step.Edge != nil {
			res = sess.ApplyEdge(ctx, *step.Edge)
			outcome.Kind, outcome.Key = string(store.KindEdge), step.Edge.Key()
		} else {
			res = sess.ApplyPosition(ctx, *step.Position)
			outcome.Kind, outcome.Key = string(store.KindPosition), step.Position.ID
		}
		outcome.Applied, outcome.Saved, outcome.Fingerprint = res.Applied, res.Saved, res.Fingerprint
		result.Steps = append(result.Steps, outcome)

		expect := StepExpect{Applied: true}
		if step.Expect != nil {
			expect = *step.Expect
		}
		if res.Applied != expect.Applied {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: expected applied=%t, got %t (%s)",
				i, outcome.Kind, outcome.Key, expect.Applied, res.Applied, res.Error))
			continue
		}
		wantSaved := expect.Applied
		if expect.Saved != nil {
			wantSaved = *expect.Saved
		}
		if res.Saved != wantSaved {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: expected saved=%t, got %t",
				i, outcome.Kind, outcome.Key, wantSaved, res.Saved))
		}
	}
}

// writeProject materializes the scenario project under root.
func writeProject(root string, scenario *Scenario) error {
	files := make(map[string]string)
	if scenario.Sample {
		for rel, content := range testutil.SampleProject {
			files[rel] = content
		}
	}
	for rel, content := range scenario.Project {
		files[rel] = content
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create project root: %w", err)
	}
	for rel, content := range files {
		if strings.HasPrefix(rel, "/") || strings.Contains(rel, "..") {
			return fmt.Errorf("project path %q escapes the project root", rel)
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	return nil
}
