package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/statmill/statmill/pkg/statmill"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(getConfig ConfigGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [formula...]",
		Short: "Compile formulas without evaluating them",
		Long: `Parse and compile the given formulas (plus any queries from the
config file) and report errors. Nothing is evaluated; use this to
validate a config file or to see a formula's normalized form.`,
		Example: `  statmill check "IPC('system.cpu') / 2"
  statmill check  # checks the config file queries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			type entry struct {
				label   string
				formula string
			}
			var entries []entry
			for _, qc := range cfg.Queries {
				entries = append(entries, entry{qc.Label, qc.Formula})
			}
			for _, arg := range args {
				label, formula := parseExpr(arg)
				entries = append(entries, entry{label, formula})
			}
			if len(entries) == 0 {
				return fmt.Errorf("nothing to check: give formulas or a queries section in the config file")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"label", "formula", "status"})

			failed := 0
			for _, e := range entries {
				q, err := statmill.CompileQuery(e.label, e.formula)
				if err != nil {
					failed++
					t.AppendRow(table.Row{e.label, e.formula, err.Error()})
					continue
				}
				t.AppendRow(table.Row{q.Label, q.String(), "ok"})
			}
			t.Render()

			if failed > 0 {
				return fmt.Errorf("%d of %d formulas failed to compile", failed, len(entries))
			}
			return nil
		},
	}
	return cmd
}
