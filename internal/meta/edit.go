package meta

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/specgraph/internal/graph"
)

var (
	// ErrInvalidOp reports an operation missing a required field.
	ErrInvalidOp = errors.New("invalid edit operation")
	// ErrNoMatch reports a remove/update/unpin whose key matched nothing.
	ErrNoMatch = errors.New("no matching entry")
)

var validate = validator.New()

// Edge edit actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionUpdate = "update"
)

// EdgeOp is one manual-edge edit request.
type EdgeOp struct {
	Action string `json:"action" yaml:"action" validate:"required,oneof=add remove update"`
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
	Type   string `json:"type" yaml:"type" validate:"required"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Key returns the identity key the op addresses.
func (op EdgeOp) Key() string {
	if op.ID != "" {
		return op.ID
	}
	return graph.EdgeID(op.Source, graph.EdgeType(op.Type), op.Target)
}

// Validate checks required fields.
func (op EdgeOp) Validate() error {
	if err := validate.Struct(op); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOp, err)
	}
	return nil
}

// Apply mutates g.Edges per op. On error g is unchanged.
//
//   - add appends unconditionally, with id = op.ID or the synthesized key
//   - remove deletes every edge whose key matches
//   - update rewrites source, target and type of the first match, and
//     label only when op.Label is non-empty
func (g *Graph) Apply(op EdgeOp) error {
	if err := op.Validate(); err != nil {
		return err
	}
	key := op.Key()

	switch op.Action {
	case ActionAdd:
		g.Edges = append(g.Edges, Edge{
			ID:     key,
			Source: op.Source,
			Target: op.Target,
			Type:   graph.EdgeType(op.Type),
			Label:  op.Label,
		})
		return nil

	case ActionRemove:
		kept := make([]Edge, 0, len(g.Edges))
		for _, e := range g.Edges {
			if e.Key() != key {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(g.Edges) {
			return fmt.Errorf("%w: edge %q", ErrNoMatch, key)
		}
		g.Edges = kept
		return nil

	case ActionUpdate:
		for i := range g.Edges {
			e := &g.Edges[i]
			if e.Key() != key {
				continue
			}
			if e.ID == "" {
				e.ID = key
			}
			e.Source = op.Source
			e.Target = op.Target
			e.Type = graph.EdgeType(op.Type)
			if op.Label != "" {
				e.Label = op.Label
			}
			return nil
		}
		return fmt.Errorf("%w: edge %q", ErrNoMatch, key)
	}
	return fmt.Errorf("%w: unknown action %q", ErrInvalidOp, op.Action)
}

// ApplyEdgeOp applies op to g and reports whether it succeeded.
func ApplyEdgeOp(g *Graph, op EdgeOp) bool {
	return g.Apply(op) == nil
}

// PositionOp pins a node to a coordinate, or clears the pin.
type PositionOp struct {
	ID    string  `json:"id" yaml:"id" validate:"required"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Clear bool    `json:"clear,omitempty" yaml:"clear,omitempty"`
}

// ApplyPosition pins or unpins per op. Unpinning an unpinned node is ErrNoMatch.
func (g *Graph) ApplyPosition(op PositionOp) error {
	if err := validate.Struct(op); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOp, err)
	}
	if op.Clear {
		if !g.UnpinPosition(op.ID) {
			return fmt.Errorf("%w: position %q", ErrNoMatch, op.ID)
		}
		return nil
	}
	g.PinPosition(op.ID, op.X, op.Y)
	return nil
}

// PinPosition fixes node id at (x, y), exempting it from automatic layout.
func (g *Graph) PinPosition(id string, x, y float64) {
	if g.Positions == nil {
		g.Positions = map[string]graph.Point{}
	}
	g.Positions[id] = graph.Point{X: x, Y: y}
}

// UnpinPosition removes the pinned position of id and reports whether one existed.
func (g *Graph) UnpinPosition(id string) bool {
	if _, ok := g.Positions[id]; !ok {
		return false
	}
	delete(g.Positions, id)
	return true
}
