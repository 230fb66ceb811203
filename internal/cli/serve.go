package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/specgraph/internal/server"
)

// DefaultAddr is the default listen address of the serve command.
const DefaultAddr = "127.0.0.1:8765"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph to a renderer over HTTP",
		Long: `Open the project and serve it over HTTP until interrupted.

Endpoints live under /v1 (graph, graph/view, meta, nodes/:id, edges,
positions, preview, history, health); Prometheus metrics under /metrics.

Examples:
  specgraph serve -p ./myproject
  specgraph serve --addr :9000 --no-journal`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", DefaultAddr, "listen address")
	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, closeFn, err := openSession(ctx, opts.RootOptions, true)
	if err != nil {
		return fail(formatter, err, ErrCodeJournalFailed)
	}
	defer closeFn()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.NewHandlers(sess))
	if err := server.Serve(ctx, opts.Addr, router); err != nil {
		return fail(formatter, WrapExitError(ExitCommandError, "server failed", err), ErrCodeGeneric)
	}
	return nil
}
