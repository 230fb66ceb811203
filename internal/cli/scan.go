package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specgraph/internal/project"
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Detect the project root and its well-known directories",
		Long: `Scan the project directory, its subdirectories and its parent for a
project root. Prints the chosen roots, every scored candidate and any
warnings. An unrecognized project is reported, not treated as an error.

Examples:
  specgraph scan -p ./myproject
  specgraph scan --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(rootOpts, cmd)
		},
	}
}

func runScan(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	layout := project.Scan(opts.Project)
	return formatter.Success(layout, func(w io.Writer) { writeLayout(w, layout) })
}

func writeLayout(w io.Writer, l project.Layout) {
	status := "recognized"
	if !l.Recognized {
		status = "not recognized"
	}
	fmt.Fprintf(w, "Project: %s (%s)\n", l.Root, status)
	for _, r := range []struct{ name, path string }{
		{"docs", l.DocsRoot},
		{"specs", l.SpecsRoot},
		{"scripts", l.ScriptsRoot},
		{"ai_context", l.AIContextRoot},
		{"runs", l.RunsRoot},
	} {
		if r.path != "" {
			fmt.Fprintf(w, "  %-10s %s\n", r.name, r.path)
		}
	}
	if len(l.Candidates) > 0 {
		fmt.Fprintln(w, "Candidates:")
		for _, c := range l.Candidates {
			fmt.Fprintf(w, "  %3d  %s", c.Score, c.Path)
			if len(c.Reasons) > 0 {
				fmt.Fprintf(w, "  [%s]", strings.Join(c.Reasons, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	for _, warn := range l.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
}
