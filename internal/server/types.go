package server

import (
	"github.com/roach88/specgraph/internal/store"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code,omitempty"`
}

// EditResponse reports the outcome of an edge or position edit.
type EditResponse struct {
	// OK is true when the edit applied.
	OK bool `json:"ok"`

	// Saved is false when the edit applied in memory only.
	Saved bool `json:"saved"`

	// Fingerprint identifies the graph after the edit.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Error explains a rejected or unsaved edit.
	Error string `json:"error,omitempty"`
}

// PreviewResponse carries the text of one project file.
type PreviewResponse struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// HistoryResponse lists journaled edits, oldest first.
type HistoryResponse struct {
	Edits []store.Edit `json:"edits"`
}

// HealthResponse describes the opened project.
type HealthResponse struct {
	Status      string   `json:"status"`
	Root        string   `json:"root"`
	Recognized  bool     `json:"recognized"`
	Warnings    []string `json:"warnings,omitempty"`
	Nodes       int      `json:"nodes"`
	Edges       int      `json:"edges"`
	Fingerprint string   `json:"fingerprint"`
	Journal     bool     `json:"journal"`
}
