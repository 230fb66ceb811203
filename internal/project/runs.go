package project

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
)

// Run statuses.
const (
	RunRecorded = "recorded"
	RunUnknown  = "unknown"
)

// EventsFile is the per-run event log.
const EventsFile = "events.jsonl"

// RunInfo is one run directory.
type RunInfo struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	StartTime string   `json:"start_time,omitempty"`
	Path      string   `json:"path"`
	Outputs   []string `json:"outputs,omitempty"`
}

// RunState is every discovered run plus the current one.
type RunState struct {
	Runs       []RunInfo `json:"runs"`
	CurrentRun string    `json:"current_run,omitempty"`
}

// LoadRuns reads one RunInfo per directory under the runs root, in name
// order. A run is "recorded" when it has an events.jsonl, whose first line's
// "ts" becomes the start time. The current run is the first one found.
func LoadRuns(layout Layout) RunState {
	var state RunState
	if layout.RunsRoot == "" {
		return state
	}
	entries, err := os.ReadDir(layout.RunsRoot)
	if err != nil {
		return state
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(layout.RunsRoot, e.Name())
		run := RunInfo{
			ID:     e.Name(),
			Status: RunUnknown,
			Path:   layout.Rel(dir),
		}
		events := filepath.Join(dir, EventsFile)
		if isFile(events) {
			run.Status = RunRecorded
			run.Outputs = append(run.Outputs, layout.Rel(events))
			run.StartTime = firstEventTime(events)
		}
		state.Runs = append(state.Runs, run)
	}

	if len(state.Runs) > 0 {
		state.CurrentRun = state.Runs[0].ID
	}
	return state
}

func firstEventTime(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ""
	}
	var event struct {
		TS string `json:"ts"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
		return ""
	}
	return event.TS
}
