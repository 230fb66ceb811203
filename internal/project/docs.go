package project

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDocGlobs selects documentation files under the docs root.
var DefaultDocGlobs = []string{"**/*.md"}

// DocIDPrefix prefixes doc node ids.
const DocIDPrefix = "doc."

// DocFile is one documentation file.
type DocFile struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// RelPath is relative to the docs root.
	RelPath string `json:"rel_path"`
	// Path is relative to the project root.
	Path string `json:"path"`
}

// IndexDocs lists files under the docs root matching any of globs (all
// matched against slash-separated paths relative to the docs root), sorted
// by relative path. Hidden directories are skipped. Invalid globs are
// ignored; an empty or all-invalid glob list falls back to DefaultDocGlobs.
func IndexDocs(layout Layout, globs []string) []DocFile {
	if layout.DocsRoot == "" || !isDir(layout.DocsRoot) {
		return nil
	}

	patterns := make([]string, 0, len(globs))
	for _, g := range globs {
		if doublestar.ValidatePattern(g) {
			patterns = append(patterns, g)
		} else {
			slog.Warn("invalid docs glob ignored", "glob", g)
		}
	}
	if len(patterns) == 0 {
		patterns = DefaultDocGlobs
	}

	var rels []string
	err := filepath.WalkDir(layout.DocsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != layout.DocsRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(layout.DocsRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				rels = append(rels, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		slog.Debug("docs walk failed", "root", layout.DocsRoot, "error", err)
	}
	sort.Strings(rels)

	out := make([]DocFile, 0, len(rels))
	for _, rel := range rels {
		abs := filepath.Join(layout.DocsRoot, filepath.FromSlash(rel))
		label := ""
		if data, err := os.ReadFile(abs); err == nil {
			label = FirstHeading(data)
		}
		if label == "" {
			label = filepath.Base(rel)
		}
		out = append(out, DocFile{
			ID:      DocIDPrefix + rel,
			Label:   label,
			RelPath: rel,
			Path:    layout.Rel(abs),
		})
	}
	return out
}
