package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/specgraph/internal/value"
)

// EditKind names the kind of journaled request.
type EditKind string

const (
	KindEdge     EditKind = "edge"
	KindPosition EditKind = "position"
)

// Session is one opened project session.
type Session struct {
	ID        string `json:"id"`
	Root      string `json:"root"`
	OpenedSeq int64  `json:"opened_seq"`
}

// Edit is one journaled edit request and its outcome.
type Edit struct {
	Seq         int64           `json:"seq"`
	SessionID   string          `json:"session_id"`
	Kind        EditKind        `json:"kind"`
	Op          json.RawMessage `json:"op"`
	Applied     bool            `json:"applied"`
	Saved       bool            `json:"saved"`
	Fingerprint string          `json:"fingerprint,omitempty"`
}

// BeginSession records a new session for the project at root.
func (s *Store) BeginSession(ctx context.Context, root string) (Session, error) {
	sess := Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Root:      root,
		OpenedSeq: s.clock.Current(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, root, opened_seq)
		VALUES (?, ?, ?)
	`, sess.ID, sess.Root, sess.OpenedSeq)
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// Append journals one edit request. op is stored as canonical JSON.
// The returned Edit carries the assigned seq.
func (s *Store) Append(ctx context.Context, sessionID string, kind EditKind, op any, applied, saved bool, fingerprint string) (Edit, error) {
	opJSON, err := marshalOp(op)
	if err != nil {
		return Edit{}, fmt.Errorf("append edit: %w", err)
	}

	e := Edit{
		Seq:         s.clock.Next(),
		SessionID:   sessionID,
		Kind:        kind,
		Op:          json.RawMessage(opJSON),
		Applied:     applied,
		Saved:       saved,
		Fingerprint: fingerprint,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO edits (seq, session_id, kind, op, applied, saved, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Seq, e.SessionID, string(e.Kind), opJSON, e.Applied, e.Saved, e.Fingerprint)
	if err != nil {
		return Edit{}, fmt.Errorf("append edit: %w", err)
	}
	return e, nil
}

// History returns journaled edits ordered by seq ASC. An empty sessionID
// selects every session; limit > 0 keeps only the latest limit edits.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]Edit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, session_id, kind, op, applied, saved, fingerprint FROM (
			SELECT seq, session_id, kind, op, applied, saved, fingerprint
			FROM edits
			WHERE ? = '' OR session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, sessionID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	edits := []Edit{}
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return edits, nil
}

// Sessions returns every recorded session ordered by opened_seq, then id.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, opened_seq
		FROM sessions
		ORDER BY opened_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Root, &sess.OpenedSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanEdit(rows *sql.Rows) (Edit, error) {
	var (
		e    Edit
		kind string
		op   string
	)
	if err := rows.Scan(&e.Seq, &e.SessionID, &kind, &op, &e.Applied, &e.Saved, &e.Fingerprint); err != nil {
		return Edit{}, fmt.Errorf("scan edit: %w", err)
	}
	e.Kind = EditKind(kind)
	e.Op = json.RawMessage(op)
	return e, nil
}

// marshalOp converts op to canonical JSON text for storage.
func marshalOp(op any) (string, error) {
	raw, err := json.Marshal(op)
	if err != nil {
		return "", fmt.Errorf("marshal op: %w", err)
	}
	v, err := value.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("marshal op: %w", err)
	}
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal op: %w", err)
	}
	return string(data), nil
}
