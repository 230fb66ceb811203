// Package harness runs conformance scenarios against a live session.
//
// A scenario writes a throwaway project to disk, opens a session on it with
// a fixed clock and a scratch journal, applies a list of edit steps and then
// checks assertions against the canonical graph and its view projections.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: manual_edge
//	description: "A manual edge survives save and reload"
//	sample: false
//	project:
//	  specs/modules/m1/spec.md: "# M1\n"
//	  specs/contract_output/c1.schema.json: '{"title": "C1"}'
//	steps:
//	  - edge: {action: add, source: m1, target: c1, type: produces}
//	    expect: {applied: true}
//	  - position: {id: m1, x: 400, y: 120}
//	assertions:
//	  - type: edge_present
//	    view: Pipeline
//	    id: m1-produces-c1
//	    confidence: manual
//	  - type: persisted_edge
//	    id: m1-produces-c1
//	golden:
//	  - name: pipeline
//	    view: Pipeline
//
// sample: true starts from testutil.SampleProject; project entries are
// written on top of it.
//
// # Assertion Types
//
//   - node_present, node_absent: a node id in the graph or a view
//   - edge_present, edge_absent: an edge id, optionally with its confidence
//   - node_count, edge_count: the size of the graph or a view
//   - position: the laid-out coordinate of a node
//   - persisted_edge: an edge id in the metadata document reloaded from disk
//   - journal_count: the number of journaled edits
//
// An empty view selects the canonical graph, not the default view.
//
// # Golden Files
//
// Each golden entry projects a view and compares its canonical JSON with
// testdata/golden/<scenario>.<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
