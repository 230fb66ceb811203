package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Detection scores.
const (
	scoreMarker      = 10
	scoreDocsStrong  = 4
	scoreDocsWeak    = 2
	scoreSpecsStrong = 4
	scoreSpecsWeak   = 1
	scoreScripts     = 2
	scoreAIContext   = 2
	scoreRuns        = 1
)

// MarkerFiles are checked in order; the first that exists is used.
var MarkerFiles = []string{
	"meta/sddai_project.json",
	".sddai/project.json",
	"sddai.project.json",
}

// Scan detects the project layout at or around dir.
//
// Candidates are dir itself, its immediate subdirectories and its parent.
// Each is scored from a marker file and well-known directory names; the
// highest score wins, ties going to the earlier candidate. A layout with
// neither a docs nor a specs root is returned unrecognized, with warnings,
// rather than as an error.
func Scan(dir string) Layout {
	abs, err := filepath.Abs(dir)
	if err != nil || !isDir(abs) {
		return Layout{Warnings: []string{fmt.Sprintf("root does not exist: %s", dir)}}
	}

	paths := []string{abs}
	if entries, err := os.ReadDir(abs); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				paths = append(paths, filepath.Join(abs, e.Name()))
			}
		}
	}
	if parent := filepath.Dir(abs); parent != abs {
		paths = append(paths, parent)
	}

	var (
		best       Layout
		bestScore  = -1
		candidates []Candidate
	)
	for _, p := range paths {
		layout, cand := evaluate(p)
		candidates = append(candidates, cand)
		if cand.Score > bestScore {
			bestScore = cand.Score
			best = layout
		}
	}

	best.Candidates = candidates
	best.Recognized = best.DocsRoot != "" || best.SpecsRoot != ""
	if !best.Recognized {
		best.Warnings = append(best.Warnings,
			fmt.Sprintf("project detection weak (score %d): docs/specs missing", bestScore))
	}

	slog.Debug("project scanned",
		"input", abs,
		"root", best.Root,
		"score", bestScore,
		"recognized", best.Recognized,
		"candidates", len(candidates))
	return best
}

// evaluate scores one candidate root. Marker fields take precedence over
// directory heuristics.
func evaluate(root string) (Layout, Candidate) {
	layout := Layout{Root: root}
	cand := Candidate{Path: root}
	add := func(score int, reason string) {
		cand.Score += score
		if reason != "" {
			cand.Reasons = append(cand.Reasons, reason)
		}
	}

	if name, ok := readMarker(root, &layout); ok {
		add(scoreMarker, "marker:"+name)
	}

	switch {
	case layout.DocsRoot != "":
		add(scoreDocsStrong, "docs:marker")
	default:
		if d := strongDocs(root); d != "" {
			layout.DocsRoot = d
			add(scoreDocsStrong, "docs:strong")
		} else if d := filepath.Join(root, "docs"); isDir(d) {
			layout.DocsRoot = d
			add(scoreDocsWeak, "docs:weak")
		}
	}

	switch {
	case layout.SpecsRoot != "":
		add(scoreSpecsStrong, "specs:marker")
	default:
		if s := filepath.Join(root, "specs"); isDir(filepath.Join(s, "modules")) || isDir(filepath.Join(s, "contract_output")) {
			layout.SpecsRoot = s
			add(scoreSpecsStrong, "specs:strong")
		} else if s := weakSpecs(root); s != "" {
			layout.SpecsRoot = s
			add(scoreSpecsWeak, "specs:weak")
		}
	}

	if layout.ScriptsRoot != "" {
		add(scoreScripts, "")
	} else if s := filepath.Join(root, "scripts"); anyFile(s, "verify.ps1", "verify.sh") {
		layout.ScriptsRoot = s
		add(scoreScripts, "scripts")
	}

	if layout.AIContextRoot != "" {
		add(scoreAIContext, "")
	} else if a := filepath.Join(root, "ai_context"); anyFile(a, "problem_registry.md", "decision_log.md") {
		layout.AIContextRoot = a
		add(scoreAIContext, "ai_context")
	}

	if layout.RunsRoot != "" {
		add(scoreRuns, "")
	} else if r := filepath.Join(root, "runs"); isDir(r) {
		layout.RunsRoot = r
		add(scoreRuns, "runs")
	}

	if layout.DocsRoot == "" {
		layout.Warnings = append(layout.Warnings, "docs root not found")
	}
	if layout.SpecsRoot == "" {
		layout.Warnings = append(layout.Warnings, "specs root not found (graph edges may be missing)")
	}
	return layout, cand
}

// readMarker fills layout roots from the first marker file under root.
// Relative marker paths resolve against root.
func readMarker(root string, layout *Layout) (string, bool) {
	for _, rel := range MarkerFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if !isFile(path) {
			continue
		}
		v, err := loadCUE(path)
		if err != nil {
			slog.Debug("marker unreadable", "path", path, "error", err)
			return "", false
		}
		resolve := func(field string) string {
			p := stringField(v, field)
			if p == "" {
				return ""
			}
			if filepath.IsAbs(p) {
				return filepath.Clean(p)
			}
			return filepath.Join(root, filepath.FromSlash(p))
		}
		layout.DocsRoot = resolve("docs_root")
		layout.SpecsRoot = resolve("specs_root")
		layout.ScriptsRoot = resolve("scripts_root")
		layout.AIContextRoot = resolve("ai_context_root")
		layout.RunsRoot = resolve("runs_root")
		return filepath.Base(path), true
	}
	return "", false
}

func strongDocs(root string) string {
	docs := filepath.Join(root, "docs")
	if isDir(docs) && anyFile(docs, "00_overview.md", "02_workflow.md") {
		return docs
	}
	if anyFile(root, "00_overview.md", "02_workflow.md") {
		return root
	}
	return ""
}

func weakSpecs(root string) string {
	for _, name := range []string{"spec", "specs"} {
		if d := filepath.Join(root, name); isDir(d) {
			return d
		}
	}
	return ""
}
