package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/statmill/statmill/pkg/statmill/dashboard"
	"github.com/statmill/statmill/pkg/statmill/dump"
	"github.com/statmill/statmill/pkg/statmill/render"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(getConfig ConfigGetter, getLogger LoggerGetter) *cobra.Command {
	var (
		exprs    []string
		interval time.Duration
		port     int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "watch [stats file]",
		Short: "Stream query results to a live dashboard",
		Long: `Evaluate formulas continuously and serve the results on a local web
dashboard. With a stats file the dumps are read from it; without one
the process samples its own Go runtime counters (heap.alloc,
goroutines.count, gc.pause_total_ns and friends) every interval.`,
		Example: `  statmill watch -e "heap=LV('heap.alloc')/1048576" --interval 2s
  statmill watch -e "ipc=IPC('system.cpu')" m5out/stats.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			queries, err := buildQueries(cfg, exprs)
			if err != nil {
				return err
			}

			var src dump.Source
			if len(args) > 0 {
				var closer io.Closer
				src, closer, err = openSource(cmd.Context(), cfg, args)
				if err != nil {
					return err
				}
				defer closer.Close()
			} else {
				src = dump.NewRuntimeSource(cmd.Context(), interval)
			}

			if port == 0 {
				port = cfg.GetDashboard().Port
			}
			server := dashboard.NewServer(port, queries)
			server.SetLogger(logger)

			serverErr := make(chan error, 1)
			go func() { serverErr <- server.Start() }()
			defer server.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "dashboard listening on http://localhost:%d\n", port)

			var sink render.Sink = server
			if !quiet {
				w := render.NewDelimitedWriter(cmd.OutOrStdout(), cfg.Separator)
				sink = render.NewMultiSink(server, w)
			}

			streamErr := make(chan error, 1)
			go func() {
				streamErr <- runStream(cfg, logger, queries, src, sink)
			}()

			select {
			case err := <-streamErr:
				return err
			case err := <-serverErr:
				return err
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "formula to watch, optionally as label=formula (repeatable)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "sampling interval for runtime counters")
	cmd.Flags().IntVar(&port, "port", 0, "dashboard port (default from config)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress text output, dashboard only")

	return cmd
}
