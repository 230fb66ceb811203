package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	All   bool
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled edits",
		Long: `List the edit requests recorded in the journal, oldest first, with
whether each applied and saved and the graph fingerprint after it.

Examples:
  specgraph history --limit 20
  specgraph history --journal ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", true, "include edits from every session")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the latest N edits (0 = all)")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := context.Background()

	if opts.NoJournal {
		return fail(formatter, NewExitError(ExitCommandError, "history needs the journal; drop --no-journal"), ErrCodeInvalidArg)
	}
	if opts.Limit < 0 {
		return fail(formatter, NewExitError(ExitCommandError, "--limit must not be negative"), ErrCodeInvalidArg)
	}

	sess, closeFn, err := openSession(ctx, opts.RootOptions, true)
	if err != nil {
		return fail(formatter, err, ErrCodeJournalFailed)
	}
	defer closeFn()

	edits, err := sess.History(ctx, opts.All, opts.Limit)
	if err != nil {
		return fail(formatter, WrapExitError(ExitCommandError, "failed to read journal", err), ErrCodeJournalFailed)
	}
	return formatter.Success(edits, func(w io.Writer) {
		if len(edits) == 0 {
			fmt.Fprintln(w, "No edits recorded.")
			return
		}
		for _, e := range edits {
			status := "rejected"
			switch {
			case e.Applied && e.Saved:
				status = "saved"
			case e.Applied:
				status = "unsaved"
			}
			fmt.Fprintf(w, "%5d  %-8s %-8s %s\n", e.Seq, e.Kind, status, e.Op)
		}
	})
}
