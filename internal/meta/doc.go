// Package meta owns the manual-metadata document, meta/pipeline_graph.json.
//
// The document is the only persisted state of a project session: phases,
// per-node overrides for modules and contracts, manually authored edges,
// pinned positions and the opaque ui configuration bag. It is loaded once
// per session, mutated only through validated operations (EdgeOp,
// PositionOp) and written back with an atomic replace after every
// successful mutation.
//
// Load is lenient: unknown keys are ignored, wrong-typed fields fall back to
// their zero value, and a missing or malformed document is replaced by
// Default(). Callers that need to tell corruption apart from absence use
// LoadChecked, which reports ErrCorrupt.
package meta
