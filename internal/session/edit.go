package session

import (
	"context"
	"log/slog"

	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/store"
)

// EditResult is the outcome of one edit request.
//
// Applied with !Saved means the in-memory metadata and the graph include
// the edit but the document on disk does not, until the next successful
// save.
type EditResult struct {
	Applied     bool   `json:"applied"`
	Saved       bool   `json:"saved"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EditEdge applies a manual-edge op and reports whether it applied.
// An applied op is saved and followed by a rebuild.
func (s *Session) EditEdge(op meta.EdgeOp) bool {
	return s.ApplyEdge(context.Background(), op).Applied
}

// ApplyEdge is EditEdge with the full outcome.
func (s *Session) ApplyEdge(ctx context.Context, op meta.EdgeOp) EditResult {
	return s.commit(ctx, store.KindEdge, op, s.meta.Apply(op))
}

// PinNode fixes node id at (x, y) and rebuilds.
func (s *Session) PinNode(id string, x, y float64) bool {
	return s.ApplyPosition(context.Background(), meta.PositionOp{ID: id, X: x, Y: y}).Applied
}

// UnpinNode returns node id to automatic layout. It fails when the node
// had no pinned position.
func (s *Session) UnpinNode(id string) bool {
	return s.ApplyPosition(context.Background(), meta.PositionOp{ID: id, Clear: true}).Applied
}

// ApplyPosition pins or unpins per op with the full outcome.
func (s *Session) ApplyPosition(ctx context.Context, op meta.PositionOp) EditResult {
	return s.commit(ctx, store.KindPosition, op, s.meta.ApplyPosition(op))
}

// commit finishes an edit whose apply step returned applyErr: on success
// it saves and rebuilds; either way it journals the outcome.
func (s *Session) commit(ctx context.Context, kind store.EditKind, op any, applyErr error) EditResult {
	var res EditResult
	if applyErr != nil {
		slog.Debug("edit rejected",
			"kind", kind,
			"error", applyErr)
		editsTotal.WithLabelValues(string(kind), "rejected").Inc()
		res.Error = applyErr.Error()
		res.Fingerprint = s.fingerprint()
		s.record(ctx, kind, op, res)
		return res
	}

	res.Applied = true
	if err := s.metaStore.Save(s.root, s.meta); err != nil {
		slog.Error("metadata save failed, edit kept in memory only",
			"path", s.metaStore.Path(s.root),
			"kind", kind,
			"error", err)
		editsTotal.WithLabelValues(string(kind), "save_failed").Inc()
		res.Error = err.Error()
	} else {
		res.Saved = true
		editsTotal.WithLabelValues(string(kind), "applied").Inc()
	}

	s.Rebuild()
	res.Fingerprint = s.fingerprint()
	s.record(ctx, kind, op, res)
	return res
}

func (s *Session) fingerprint() string {
	fp, err := s.graph.Fingerprint()
	if err != nil {
		slog.Warn("graph fingerprint failed", "error", err)
		return ""
	}
	return fp
}

// record journals an edit outcome. Journal failures never fail the edit.
func (s *Session) record(ctx context.Context, kind store.EditKind, op any, res EditResult) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, s.journalID, kind, op, res.Applied, res.Saved, res.Fingerprint); err != nil {
		slog.Warn("journal append failed",
			"kind", kind,
			"error", err)
	}
}
