// Package project reads the on-disk project that feeds the graph: it
// detects the project layout, and extracts module specs, contract schemas,
// run records and documentation files as plain records.
//
// Readers are best-effort. A file that cannot be read or parsed is skipped
// with a debug log; none of them fail the caller. Paths in returned records
// are slash-separated and relative to the project root when possible.
package project
