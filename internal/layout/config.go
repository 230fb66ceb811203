package layout

import (
	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/value"
)

// DefaultTypeRows is the default kind-to-row order inside a phase block.
var DefaultTypeRows = []string{
	string(graph.KindDoc),
	string(graph.KindModule),
	string(graph.KindContract),
	string(graph.KindGate),
	string(graph.KindRun),
}

// Config holds the grid parameters read from the metadata ui bag.
type Config struct {
	PhaseOrder    []string
	TypeRows      []string
	PhaseGapX     float64
	PhaseOriginX  float64
	PhaseOriginY  float64
	BlockPadX     float64
	BlockPadY     float64
	RowGapY       float64
	ColGapX       float64
	MaxColsPerRow int
}

// ParseConfig reads ui.phase_order and ui.layout_config. Missing or
// wrong-typed values take their defaults. Without ui.phase_order the
// document's phases ordered by "order" are used, and without phases the
// built-in phase list.
func ParseConfig(m *meta.Graph) Config {
	var ui value.Object
	if m != nil {
		ui = m.UI
	}
	lc := ui.Object("layout_config")
	origin := lc.Object("phase_origin")
	pad := lc.Object("block_padding")

	cfg := Config{
		PhaseOrder:    ui.Strings("phase_order"),
		TypeRows:      lc.Strings("type_rows"),
		PhaseGapX:     lc.Float("phase_gap_x", 700),
		PhaseOriginX:  origin.Float("x", 0),
		PhaseOriginY:  origin.Float("y", 0),
		BlockPadX:     pad.Float("x", 80),
		BlockPadY:     pad.Float("y", 80),
		RowGapY:       lc.Float("row_gap_y", 120),
		ColGapX:       lc.Float("col_gap_x", 220),
		MaxColsPerRow: lc.Int("max_cols_per_row", 6),
	}
	if len(cfg.PhaseOrder) == 0 && m != nil {
		for _, ph := range m.SortedPhases() {
			cfg.PhaseOrder = append(cfg.PhaseOrder, ph.ID)
		}
	}
	if len(cfg.PhaseOrder) == 0 {
		cfg.PhaseOrder = meta.DefaultPhaseIDs
	}
	if len(cfg.TypeRows) == 0 {
		cfg.TypeRows = DefaultTypeRows
	}
	if cfg.MaxColsPerRow < 1 {
		cfg.MaxColsPerRow = 1
	}
	return cfg
}

// PhaseOrigin returns the top-left corner of the block for phase index i.
func (c Config) PhaseOrigin(i int) graph.Point {
	return graph.Point{X: c.PhaseOriginX + float64(i)*c.PhaseGapX, Y: c.PhaseOriginY}
}

// NodeOffset returns a cell's offset inside its phase block.
func (c Config) NodeOffset(col, row int) graph.Point {
	return graph.Point{X: c.BlockPadX + float64(col)*c.ColGapX, Y: c.BlockPadY + float64(row)*c.RowGapY}
}
