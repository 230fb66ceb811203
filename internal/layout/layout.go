// Package layout assigns canvas positions to graph nodes on a
// deterministic phase/type grid.
//
// Each phase owns a block, offset horizontally by its index in the phase
// order. Inside a block every node kind owns a row (type_rows order;
// unlisted kinds share the row after the last listed one) and nodes fill
// the row left to right in graph order. A row longer than max_cols_per_row
// wraps into sub-rows, and later rows of the same block move down to make
// room.
//
// Pinned positions from the metadata document are applied verbatim and
// never recomputed.
package layout

import (
	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/meta"
)

// Engine applies the grid layout.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

type cell struct {
	phase string
	row   int
}

// Apply sets Position on every node of g. Pinned nodes take m.Positions;
// every other node is placed from scratch, so Apply is idempotent.
func (e *Engine) Apply(g *graph.Graph, m *meta.Graph) {
	cfg := ParseConfig(m)

	phaseIndex := make(map[string]int, len(cfg.PhaseOrder))
	for i, p := range cfg.PhaseOrder {
		if _, ok := phaseIndex[p]; !ok {
			phaseIndex[p] = i
		}
	}
	rowIndex := make(map[string]int, len(cfg.TypeRows))
	for i, k := range cfg.TypeRows {
		if _, ok := rowIndex[k]; !ok {
			rowIndex[k] = i
		}
	}

	var pinned map[string]graph.Point
	if m != nil {
		pinned = m.Positions
	}

	place := func(n *graph.Node) (string, int, bool) {
		if _, ok := pinned[n.ID]; ok {
			return "", 0, false
		}
		phase := n.Phase
		if phase == "" {
			phase = graph.UnassignedPhase
		}
		row, ok := rowIndex[string(n.Kind)]
		if !ok {
			row = len(cfg.TypeRows)
		}
		return phase, row, true
	}

	// Count nodes per cell to size overflow sub-rows.
	counts := make(map[cell]int)
	for i := range g.Nodes {
		if phase, row, ok := place(&g.Nodes[i]); ok {
			counts[cell{phase, row}]++
		}
	}

	filled := make(map[cell]int)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if p, ok := pinned[n.ID]; ok {
			n.Position = &graph.Point{X: p.X, Y: p.Y}
			continue
		}
		phase, row, _ := place(n)

		idx, ok := phaseIndex[phase]
		if !ok {
			idx = len(cfg.PhaseOrder)
		}

		k := cell{phase, row}
		slot := filled[k]
		filled[k] = slot + 1

		subRow := slot / cfg.MaxColsPerRow
		col := slot % cfg.MaxColsPerRow
		line := row + extraRows(counts, phase, row, cfg.MaxColsPerRow) + subRow

		origin := cfg.PhaseOrigin(idx)
		off := cfg.NodeOffset(col, line)
		n.Position = &graph.Point{X: origin.X + off.X, Y: origin.Y + off.Y}
	}
}

// extraRows is the number of overflow sub-rows used by rows above row in
// the same phase block.
func extraRows(counts map[cell]int, phase string, row, maxCols int) int {
	extra := 0
	for r := 0; r < row; r++ {
		if c := counts[cell{phase, r}]; c > maxCols {
			extra += (c - 1) / maxCols
		}
	}
	return extra
}
