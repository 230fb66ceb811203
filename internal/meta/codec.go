package meta

import (
	"sort"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/value"
)

// decode extracts a Graph from a parsed document. Every field is optional.
func decode(obj value.Object) *Graph {
	g := &Graph{
		SchemaVersion: obj.String("schema_version", SchemaVersion),
		Positions:     map[string]graph.Point{},
		UI:            obj.Object("ui"),
	}

	for _, o := range obj.Objects("phases") {
		id := o.String("id", "")
		g.Phases = append(g.Phases, Phase{
			ID:    id,
			Label: o.String("label", id),
			Order: o.Int("order", 0),
		})
	}

	for _, o := range obj.Objects("modules") {
		id := o.String("id", "")
		g.Modules = append(g.Modules, Module{
			ID:       id,
			Label:    o.String("label", id),
			Path:     o.String("path", ""),
			Phase:    o.String("phase", ""),
			Tier:     o.String("tier", ""),
			Mutable:  o.Bool("mutable"),
			Pinned:   o.Bool("pinned"),
			Category: o.String("category", ""),
		})
	}

	for _, o := range obj.Objects("contracts") {
		id := o.String("id", "")
		g.Contracts = append(g.Contracts, Contract{
			ID:         id,
			Label:      o.String("label", id),
			SchemaPath: o.String("schema_path", ""),
			Phase:      o.String("phase", ""),
			Tier:       o.String("tier", ""),
			Mutable:    o.Bool("mutable"),
			Pinned:     o.Bool("pinned"),
			Category:   o.String("category", ""),
		})
	}

	for _, o := range obj.Objects("edges") {
		g.Edges = append(g.Edges, Edge{
			ID:        o.String("id", ""),
			Source:    o.String("source", ""),
			Target:    o.String("target", ""),
			Type:      graph.EdgeType(o.String("type", "")),
			Label:     o.String("label", ""),
			View:      o.String("view", ""),
			Aggregate: o.Bool("aggregate"),
		})
	}

	for _, m := range obj.Object("positions") {
		p, ok := m.Value.(value.Object)
		if !ok {
			continue
		}
		g.Positions[m.Key] = graph.Point{X: p.Float("x", 0), Y: p.Float("y", 0)}
	}

	return g
}

// encode renders g in document key order. Empty optional fields are omitted.
func encode(g *Graph) value.Object {
	var obj value.Object
	obj.Set("schema_version", value.String(g.SchemaVersion))

	phases := value.Array{}
	for _, ph := range g.Phases {
		phases = append(phases, value.Object{
			{Key: "id", Value: value.String(ph.ID)},
			{Key: "label", Value: value.String(ph.Label)},
			{Key: "order", Value: value.NewInt(int64(ph.Order))},
		})
	}
	obj.Set("phases", phases)

	modules := value.Array{}
	for _, m := range g.Modules {
		o := value.Object{
			{Key: "id", Value: value.String(m.ID)},
			{Key: "label", Value: value.String(m.Label)},
			{Key: "path", Value: value.String(m.Path)},
		}
		setOverrides(&o, m.Phase, m.Tier, m.Mutable, m.Pinned, m.Category)
		modules = append(modules, o)
	}
	obj.Set("modules", modules)

	contracts := value.Array{}
	for _, c := range g.Contracts {
		o := value.Object{
			{Key: "id", Value: value.String(c.ID)},
			{Key: "label", Value: value.String(c.Label)},
			{Key: "schema_path", Value: value.String(c.SchemaPath)},
		}
		setOverrides(&o, c.Phase, c.Tier, c.Mutable, c.Pinned, c.Category)
		contracts = append(contracts, o)
	}
	obj.Set("contracts", contracts)

	edges := value.Array{}
	for _, e := range g.Edges {
		var o value.Object
		if e.ID != "" {
			o.Set("id", value.String(e.ID))
		}
		o.Set("source", value.String(e.Source))
		o.Set("target", value.String(e.Target))
		o.Set("type", value.String(string(e.Type)))
		if e.Label != "" {
			o.Set("label", value.String(e.Label))
		}
		if e.View != "" {
			o.Set("view", value.String(e.View))
		}
		if e.Aggregate {
			o.Set("aggregate", value.Bool(true))
		}
		edges = append(edges, o)
	}
	obj.Set("edges", edges)

	obj.Set("positions", encodePositions(g.Positions))

	if len(g.UI) > 0 {
		obj.Set("ui", g.UI)
	}
	return obj
}

// encodePositions renders positions sorted by node id.
func encodePositions(positions map[string]graph.Point) value.Object {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := value.Object{}
	for _, id := range ids {
		p := positions[id]
		out = append(out, value.Member{Key: id, Value: value.Object{
			{Key: "x", Value: value.NewFloat(p.X)},
			{Key: "y", Value: value.NewFloat(p.Y)},
		}})
	}
	return out
}

func setOverrides(o *value.Object, phase, tier string, mutable, pinned bool, category string) {
	if phase != "" {
		o.Set("phase", value.String(phase))
	}
	if tier != "" {
		o.Set("tier", value.String(tier))
	}
	if mutable {
		o.Set("mutable", value.Bool(true))
	}
	if pinned {
		o.Set("pinned", value.Bool(true))
	}
	if category != "" {
		o.Set("category", value.String(category))
	}
}
