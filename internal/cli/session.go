package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/roach88/specgraph/internal/session"
	"github.com/roach88/specgraph/internal/store"
)

// DefaultJournalPath is the journal location relative to the project
// directory.
const DefaultJournalPath = ".specgraph/journal.db"

// journalPath resolves the journal database for opts.
func journalPath(opts *RootOptions) string {
	if opts.Journal != "" {
		return opts.Journal
	}
	return filepath.Join(opts.Project, filepath.FromSlash(DefaultJournalPath))
}

// openSession opens the project named by opts. With journal set and
// --no-journal unset, edits are recorded. The returned close func releases
// the journal.
func openSession(ctx context.Context, opts *RootOptions, journal bool) (*session.Session, func(), error) {
	var sessOpts []session.Option
	closeFn := func() {}

	if journal && !opts.NoJournal {
		path := journalPath(opts)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to create journal directory", err)
		}
		j, err := store.Open(path)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		sessOpts = append(sessOpts, session.WithJournal(j))
		closeFn = func() { j.Close() }
	}

	sess, err := session.Open(ctx, opts.Project, sessOpts...)
	if err != nil {
		closeFn()
		return nil, nil, WrapExitError(ExitCommandError, "failed to open project", err)
	}
	return sess, closeFn, nil
}
