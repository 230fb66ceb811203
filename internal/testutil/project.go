package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteProject writes files (slash-separated path -> content) under root.
func WriteProject(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// SampleProject is a small, fully recognized project: two phases, two
// modules, two contracts, two docs and one recorded run.
var SampleProject = map[string]string{
	"docs/00_overview.md":        "# Overview\n\nPipeline overview.\n",
	"docs/guide/setup.md":        "Setup notes without a heading.\n",
	"scripts/verify.sh":          "#!/bin/sh\nexit 0\n",
	"runs/r1/events.jsonl":       `{"ts":"2026-01-01T00:00:00Z","event":"start"}` + "\n",
	"runs/r0-empty/.keep":        "",
	"ai_context/decision_log.md": "# Decisions\n",

	"specs/modules/graph_builder/spec.md": `# Graph Builder

Fuses records into one graph.

## Inputs
- contract_input

## Outputs
- graph

## Acceptance Criteria
- gate.layout_ok

## Trace Links
- docs/00_overview.md
`,
	"specs/modules/project_scanner/spec.md": `# Project Scanner

## Outputs
- contract_input
`,
	"specs/contract_output/graph.schema.json":          `{"title": "Graph Schema", "type": "object"}`,
	"specs/contract_output/contract_input.schema.json": `{"type": "object"}`,

	"meta/pipeline_graph.json": `{
  "schema_version": "1.0.0",
  "phases": [
    {"id": "Render", "label": "Render", "order": 20},
    {"id": "Ingest", "label": "Ingest", "order": 10}
  ],
  "modules": [
    {"id": "graph_builder", "label": "Graph Builder", "path": "", "phase": "Render", "pinned": true, "category": "Modules"},
    {"id": "project_scanner", "label": "Project Scanner", "path": "", "phase": "Ingest"}
  ],
  "contracts": [
    {"id": "graph", "label": "Graph Schema", "schema_path": "", "phase": "Render", "category": "Contracts"}
  ],
  "edges": [],
  "positions": {}
}
`,
}
