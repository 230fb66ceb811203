package session

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/project"
	"github.com/roach88/specgraph/internal/value"
	"github.com/roach88/specgraph/internal/view"
)

// PhaseInfo is one phase of the meta fetch.
type PhaseInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// MetaInfo is the renderer-facing subset of the metadata document.
type MetaInfo struct {
	SchemaVersion string                 `json:"schema_version"`
	Phases        []PhaseInfo            `json:"phases"`
	Positions     map[string]graph.Point `json:"positions"`
	UI            value.Object           `json:"ui,omitempty"`
}

// GraphJSON returns the full canonical graph envelope as compact JSON.
func (s *Session) GraphJSON() (string, error) {
	data, err := json.Marshal(s.graph)
	if err != nil {
		return "", fmt.Errorf("marshal graph: %w", err)
	}
	return string(data), nil
}

// Fingerprint returns the fingerprint of the canonical graph.
func (s *Session) Fingerprint() (string, error) {
	return s.graph.Fingerprint()
}

// Project returns the projection for view and focus.
func (s *Session) Project(name, focus string) *graph.Graph {
	mode := "named"
	if name == "" {
		name = s.meta.UI.String("default_view", view.Pipeline)
	}
	if view.IsSummary(name) {
		mode = "summary"
	}
	projectionsTotal.WithLabelValues(mode).Inc()
	return view.Project(s.graph, s.meta.UI, name, focus)
}

// View returns the projection for view and focus as compact JSON.
func (s *Session) View(name, focus string) (string, error) {
	data, err := json.Marshal(s.Project(name, focus))
	if err != nil {
		return "", fmt.Errorf("marshal view %q: %w", name, err)
	}
	return string(data), nil
}

// ViewCallback computes View and passes the result to done before
// returning. On failure done receives "".
func (s *Session) ViewCallback(name, focus string, done func(string)) {
	payload, err := s.View(name, focus)
	if err != nil {
		payload = ""
	}
	if done != nil {
		done(payload)
	}
}

// Meta returns schema version, phases in order, pinned positions and the
// ui configuration.
func (s *Session) Meta() MetaInfo {
	info := MetaInfo{
		SchemaVersion: s.meta.SchemaVersion,
		Phases:        []PhaseInfo{},
		Positions:     map[string]graph.Point{},
		UI:            s.meta.UI.Clone(),
	}
	for _, ph := range s.meta.SortedPhases() {
		info.Phases = append(info.Phases, PhaseInfo{ID: ph.ID, Label: ph.Label, Order: ph.Order})
	}
	for id, p := range s.meta.Positions {
		info.Positions[id] = p
	}
	return info
}

// NodeDetail returns the node's JSON object, enriched with the module's
// inputs, outputs, verifies and trace_links, or the contract's
// schema_path, when the id names one.
func (s *Session) NodeDetail(id string) (value.Object, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal node %q: %w", id, err)
	}
	detail, err := value.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("decode node %q: %w", id, err)
	}

	for _, m := range s.modules {
		if m.ID == id {
			detail.Set("inputs", value.NewStrings(m.Inputs...))
			detail.Set("outputs", value.NewStrings(m.Outputs...))
			detail.Set("verifies", value.NewStrings(m.Verifies...))
			detail.Set("trace_links", value.NewStrings(m.TraceLinks...))
			break
		}
	}
	for _, c := range s.contracts {
		if c.ID == id {
			detail.Set("schema_path", value.String(c.SchemaPath))
			break
		}
	}
	return detail, nil
}

// Preview returns the text of path, resolved against the project root
// when relative. It returns "" when the file cannot be read as text.
func (s *Session) Preview(path string) string {
	if path == "" {
		return ""
	}
	return project.ReadText(s.layout.Abs(path))
}
