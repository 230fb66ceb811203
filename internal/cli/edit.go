package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/session"
	"github.com/roach88/specgraph/internal/value"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Source string
	Target string
	Type   string
	Label  string
	ID     string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <add|remove|update>",
		Short: "Add, remove or update a manual edge",
		Long: `Apply one manual-edge edit to the metadata document, save it and
rebuild the graph.

The edge is addressed by --id when given, else by "<source>-<type>-<target>".
add always appends; remove deletes every matching edge; update rewrites
source, target and type of the first match, and its label only when --label
is non-empty. A rejected edit changes nothing and exits 1.

Examples:
  specgraph edit add --source m1 --target c1 --type produces
  specgraph edit update --id m1-produces-c1 --source m1 --target c1 --type produces --label writes
  specgraph edit remove --source m1 --target c1 --type produces`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "source node id")
	cmd.Flags().StringVar(&opts.Target, "target", "", "target node id")
	cmd.Flags().StringVar(&opts.Type, "type", "", "edge type (produces, consumes, verifies, docs_link, ...)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "edge label")
	cmd.Flags().StringVar(&opts.ID, "id", "", "edge id (defaults to <source>-<type>-<target>)")

	return cmd
}

func runEdit(opts *EditOptions, action string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	sess, closeFn, err := openSession(ctx, opts.RootOptions, true)
	if err != nil {
		return fail(formatter, err, ErrCodeJournalFailed)
	}
	defer closeFn()

	op := meta.EdgeOp{
		Action: action,
		Source: opts.Source,
		Target: opts.Target,
		Type:   opts.Type,
		Label:  opts.Label,
		ID:     opts.ID,
	}
	res := sess.ApplyEdge(ctx, op)
	return reportEdit(formatter, res, fmt.Sprintf("%s %s", action, op.Key()))
}

// PinOptions holds flags for the pin command.
type PinOptions struct {
	*RootOptions
	Clear bool
}

// NewPinCommand creates the pin command.
func NewPinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pin <id> [x y]",
		Short: "Pin a node to a position, or clear its pin",
		Long: `Pin a node to a canvas position. A pinned node keeps that position
through every rebuild. --clear returns the node to automatic layout.

Examples:
  specgraph pin graph_builder 400 120
  specgraph pin --clear graph_builder`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Clear {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPin(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "remove the pinned position")
	return cmd
}

func runPin(opts *PinOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	op := meta.PositionOp{ID: args[0], Clear: opts.Clear}
	if !opts.Clear {
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return fail(formatter, NewExitError(ExitCommandError, fmt.Sprintf("invalid coordinates %q %q", args[1], args[2])), ErrCodeInvalidArg)
		}
		op.X, op.Y = x, y
	}

	sess, closeFn, err := openSession(ctx, opts.RootOptions, true)
	if err != nil {
		return fail(formatter, err, ErrCodeJournalFailed)
	}
	defer closeFn()

	res := sess.ApplyPosition(ctx, op)
	what := fmt.Sprintf("pin %s (%g, %g)", op.ID, op.X, op.Y)
	if op.Clear {
		what = "unpin " + op.ID
	}
	return reportEdit(formatter, res, what)
}

// reportEdit prints an edit outcome. A rejected edit exits 1; an applied
// edit that could not be saved exits 2.
func reportEdit(f *OutputFormatter, res session.EditResult, what string) error {
	if !res.Applied {
		_ = f.Error(ErrCodeEditRejected, fmt.Sprintf("%s rejected: %s", what, res.Error), res)
		return NewExitError(ExitFailure, "edit rejected")
	}
	if !res.Saved {
		_ = f.Error(ErrCodeWriteFailed, fmt.Sprintf("%s applied but not saved: %s", what, res.Error), res)
		return NewExitError(ExitCommandError, "metadata not saved")
	}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s: applied\n", what)
		fmt.Fprintf(w, "fingerprint %s\n", res.Fingerprint)
	})
}

// valueText renders v for text output: strings bare, everything else as
// compact JSON.
func valueText(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
