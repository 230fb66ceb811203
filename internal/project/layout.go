package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Layout is the detected shape of a project. Empty roots were not found.
type Layout struct {
	Recognized    bool        `json:"recognized"`
	Root          string      `json:"root"`
	DocsRoot      string      `json:"docs_root,omitempty"`
	SpecsRoot     string      `json:"specs_root,omitempty"`
	ScriptsRoot   string      `json:"scripts_root,omitempty"`
	AIContextRoot string      `json:"ai_context_root,omitempty"`
	RunsRoot      string      `json:"runs_root,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty"`
}

// Candidate is one scored directory considered during detection.
type Candidate struct {
	Path    string   `json:"path"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// Rel returns path relative to the layout root in slash form.
// Paths outside the root are returned unchanged.
func (l Layout) Rel(path string) string {
	if l.Root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(path)
	}
	return rel
}

// Abs resolves a record path against the layout root.
func (l Layout) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Root, filepath.FromSlash(path))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func anyFile(dir string, names ...string) bool {
	for _, name := range names {
		if isFile(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}
