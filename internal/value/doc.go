// Package value provides the opaque JSON bags carried through the graph
// pipeline: per-node and per-edge `meta`, and the `ui` configuration block of
// the metadata document.
//
// The bags are passthrough data. Nothing validates them up front; consumers
// read the fields they need with lenient accessors (String, Float, Int, ...)
// that fall back to a caller-supplied default when a field is missing or has
// the wrong JSON type.
//
// Key design constraints:
//   - Object preserves member order from the source document, so a load/save
//     round trip reproduces the document as written
//   - Numbers keep their literal text (Number) and are only interpreted on read
//   - MarshalCanonical produces sorted-key, NFC-normalized JSON for hashing
//
// This package imports nothing internal.
package value
