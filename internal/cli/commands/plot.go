package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statmill/statmill/pkg/statmill/render"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand(getConfig ConfigGetter, getLogger LoggerGetter) *cobra.Command {
	var (
		exprs  []string
		out    string
		title  string
		yLabel string
		logY   bool
	)

	cmd := &cobra.Command{
		Use:   "plot [stats file]",
		Short: "Chart query results as a time series",
		Long: `Evaluate the given formulas over every dump and write a line chart
with one series per query. The output format follows the file
extension: .png, .pdf, or .svg.`,
		Example: `  statmill plot -e "ipc=IPC('system.cpu')" --out ipc.png m5out/stats.txt
  statmill plot -e "heap=LV('heap.alloc')/1048576" --out heap.svg --ylabel MiB stats.txt`,
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

			plot := render.NewTimeSeriesPlot(out)
			plot.Title = title
			plot.YLabel = yLabel
			plot.LogY = logY

			if err := runStream(cfg, getLogger(cmd.Context()), queries, src, plot); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "formula to plot, optionally as label=formula (repeatable)")
	cmd.Flags().StringVar(&out, "out", "statmill.png", "output image path (.png, .pdf, .svg)")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	cmd.Flags().StringVar(&yLabel, "ylabel", "", "y-axis label")
	cmd.Flags().BoolVar(&logY, "log-y", false, "logarithmic y axis")

	return cmd
}
