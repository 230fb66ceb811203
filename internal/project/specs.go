package project

import (
	"bufio"
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Section headings collected from module specs (case-insensitive).
const (
	SectionInputs     = "Inputs"
	SectionOutputs    = "Outputs"
	SectionAcceptance = "Acceptance Criteria"
	SectionTraceLinks = "Trace Links"
)

// ModuleSpec is what a module's spec.md declares.
type ModuleSpec struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Path       string   `json:"path"`
	Inputs     []string `json:"inputs,omitempty"`
	Outputs    []string `json:"outputs,omitempty"`
	Verifies   []string `json:"verifies,omitempty"`
	TraceLinks []string `json:"trace_links,omitempty"`
}

// LoadModules reads <specs>/modules/<id>/spec.md for every module
// directory, in directory name order. Directories without a spec.md are
// skipped.
func LoadModules(layout Layout) []ModuleSpec {
	if layout.SpecsRoot == "" {
		return nil
	}
	dir := filepath.Join(layout.SpecsRoot, "modules")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []ModuleSpec
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), "spec.md")
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Debug("module spec unreadable", "path", path, "error", err)
			}
			continue
		}
		spec := ParseModuleSpec(data)
		spec.ID = e.Name()
		spec.Path = layout.Rel(path)
		out = append(out, spec)
	}
	return out
}

// ParseModuleSpec extracts the label and list sections from spec text.
// The label is the first "# " heading; list items are "- " bullets under a
// "## " heading, up to the next "## " heading.
func ParseModuleSpec(data []byte) ModuleSpec {
	var spec ModuleSpec
	sections := map[string]*[]string{
		strings.ToLower(SectionInputs):     &spec.Inputs,
		strings.ToLower(SectionOutputs):    &spec.Outputs,
		strings.ToLower(SectionAcceptance): &spec.Verifies,
		strings.ToLower(SectionTraceLinks): &spec.TraceLinks,
	}

	var current *[]string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "## "):
			current = sections[strings.ToLower(strings.TrimSpace(line[3:]))]
		case strings.HasPrefix(line, "# "):
			if spec.Label == "" {
				spec.Label = strings.TrimSpace(line[2:])
			}
		case current != nil:
			item := strings.TrimSpace(line)
			if strings.HasPrefix(item, "- ") {
				*current = append(*current, strings.TrimSpace(item[2:]))
			}
		}
	}
	return spec
}

// FirstHeading returns the text of the first "# " heading in data, or "".
func FirstHeading(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}
