// Package session owns one opened project: its scanned layout, the
// collaborator records, the metadata document and the cached canonical
// graph.
//
// Every rebuild is a full recompute: records are re-read, the builder
// fuses them with the in-memory metadata, and the layout engine places the
// result. Edits flow backward through the metadata document:
//
//	edit op -> meta.Graph.Apply -> meta.Store.Save -> Rebuild -> subscribers
//
// A Session has no internal locking. Callers serialize every call against
// one Session; the HTTP server does so with a mutex.
package session
