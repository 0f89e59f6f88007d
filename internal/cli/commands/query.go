package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/statmill/statmill/internal/cli/config"
	"github.com/statmill/statmill/pkg/statmill"
	"github.com/statmill/statmill/pkg/statmill/dump"
	"github.com/statmill/statmill/pkg/statmill/render"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(getConfig ConfigGetter, getLogger LoggerGetter) *cobra.Command {
	var exprs []string

	cmd := &cobra.Command{
		Use:   "query [stats file]",
		Short: "Evaluate formulas over a dump stream",
		Long: `Evaluate one formula per --expr flag (plus any queries from the
config file) against every dump in the given stats file, or standard
input when no file is given.

Each dump prints one line per query. Use --last-only to print only the
final values, or --output table for a summary table.`,
		Example: `  statmill query -e "IPC('system.cpu')" m5out/stats.txt
  statmill query -e "ipc=IPC('system.cpu')" -e "misses=Sum('system.l2.*.misses')" m5out/stats.txt
  cat m5out/stats.txt | statmill query -e "Delta('sim_ticks')"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			queries, err := buildQueries(cfg, exprs)
			if err != nil {
				return err
			}

			src, closer, err := openSource(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			var sink render.Sink
			switch cfg.Output {
			case "table":
				sink = render.NewTable(cmd.OutOrStdout())
			default:
				w := render.NewDelimitedWriter(cmd.OutOrStdout(), cfg.Separator)
				w.LastOnly = cfg.LastOnly
				sink = w
			}

			return runStream(cfg, getLogger(cmd.Context()), queries, src, sink)
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "formula to evaluate, optionally as label=formula (repeatable)")

	return cmd
}

// runStream drives a Stream over src and feeds every tick to sink.
func runStream(cfg *config.Config, logger *slog.Logger, queries []*statmill.Query, src dump.Source, sink render.Sink) error {
	stream := statmill.NewStream(src, queries...)
	stream.SetLogger(logger)
	stream.SetParallel(cfg.Parallel)

	for stream.Scan() {
		if err := sink.WriteRows(stream.Rows()); err != nil {
			sink.Close()
			return err
		}
	}
	if err := stream.Err(); err != nil {
		sink.Close()
		return err
	}
	return sink.Close()
}
