package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/session"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	Focus string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Build and print the full canonical graph",
		Long: `Build the canonical graph of the project and print it.

Text output lists every node with its position and every edge with its
confidence. JSON output carries the full envelope
{schema_version, generated_at, nodes, edges}.

Examples:
  specgraph graph -p ./myproject
  specgraph graph --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, cmd)
		},
	}
}

func runGraph(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	sess, closeFn, err := openSession(context.Background(), opts, false)
	if err != nil {
		return fail(formatter, err, ErrCodeGeneric)
	}
	defer closeFn()

	g := sess.Graph()
	fp, _ := sess.Fingerprint()
	formatter.VerboseLog("fingerprint %s", fp)
	return formatter.Success(g, func(w io.Writer) { writeGraph(w, g) })
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view [name]",
		Short: "Print a bounded view projection",
		Long: `Project the canonical graph for a named view: Summary, Pipeline, Docs,
Contracts or any custom view tag. Without a name the ui.default_view of the
metadata document is used, else Pipeline. --focus keeps only nodes whose
category contains the given text (case-insensitive).

Examples:
  specgraph view Summary
  specgraph view Pipeline --focus modules --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runView(opts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Focus, "focus", "", "category substring filter")
	return cmd
}

func runView(opts *ViewOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	sess, closeFn, err := openSession(context.Background(), opts.RootOptions, false)
	if err != nil {
		return fail(formatter, err, ErrCodeGeneric)
	}
	defer closeFn()

	p := sess.Project(name, opts.Focus)
	return formatter.Success(p, func(w io.Writer) { writeGraph(w, p) })
}

// NewMetaCommand creates the meta command.
func NewMetaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Print phases, pinned positions and ui configuration",
		Args:  cobra.NoArgs,
		Long: `Print the renderer-facing part of the metadata document: schema
version, phases in order, pinned positions and the ui configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(rootOpts, cmd)
		},
	}
}

func runMeta(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	sess, closeFn, err := openSession(context.Background(), opts, false)
	if err != nil {
		return fail(formatter, err, ErrCodeGeneric)
	}
	defer closeFn()

	info := sess.Meta()
	return formatter.Success(info, func(w io.Writer) {
		fmt.Fprintf(w, "Schema: %s\n", info.SchemaVersion)
		fmt.Fprintln(w, "Phases:")
		for _, ph := range info.Phases {
			fmt.Fprintf(w, "  %4d  %s (%s)\n", ph.Order, ph.ID, ph.Label)
		}
		if len(info.Positions) > 0 {
			fmt.Fprintf(w, "Pinned positions: %d\n", len(info.Positions))
		}
		if len(info.UI) > 0 {
			fmt.Fprintf(w, "UI keys: %v\n", info.UI.Keys())
		}
	})
}

// NewNodeCommand creates the node command.
func NewNodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Print one node with its spec or schema detail",
		Long: `Print a node of the canonical graph. Module nodes also carry the
inputs, outputs, verifies and trace_links of their spec; contract nodes
carry their schema_path.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(rootOpts, args[0], cmd)
		},
	}
}

func runNode(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	sess, closeFn, err := openSession(context.Background(), opts, false)
	if err != nil {
		return fail(formatter, err, ErrCodeGeneric)
	}
	defer closeFn()

	detail, err := sess.NodeDetail(id)
	if errors.Is(err, session.ErrUnknownNode) {
		return fail(formatter, WrapExitError(ExitCommandError, "unknown node", err), ErrCodeUnknownNode)
	}
	if err != nil {
		return fail(formatter, err, ErrCodeGeneric)
	}
	return formatter.Success(detail, func(w io.Writer) {
		for _, m := range detail {
			fmt.Fprintf(w, "%-14s %s\n", m.Key+":", valueText(m.Value))
		}
	})
}

// fail reports err through the formatter and returns it as an ExitError.
func fail(f *OutputFormatter, err error, code string) error {
	_ = f.Error(code, err.Error(), nil)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return WrapExitError(ExitCommandError, "command failed", err)
}

func writeGraph(w io.Writer, g *graph.Graph) {
	fmt.Fprintf(w, "Graph %s: %d nodes, %d edges\n", g.GeneratedAt, len(g.Nodes), len(g.Edges))
	for _, n := range g.Nodes {
		pos := "-"
		if n.Position != nil {
			pos = fmt.Sprintf("(%g, %g)", n.Position.X, n.Position.Y)
		}
		fmt.Fprintf(w, "  %-9s %-32s %-20s %s\n", n.Kind, n.ID, pos, n.Label)
	}
	for _, e := range g.Edges {
		conf := string(e.Confidence)
		if conf == "" {
			conf = "-"
		}
		fmt.Fprintf(w, "  %s -[%s]-> %s  %s\n", e.Source, e.Type, e.Target, conf)
	}
}
