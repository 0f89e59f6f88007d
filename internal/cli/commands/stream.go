// Package commands implements the statmill subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/statmill/statmill/internal/cli/config"
	"github.com/statmill/statmill/pkg/statmill"
	"github.com/statmill/statmill/pkg/statmill/dump"
)

// ConfigGetter retrieves the loaded config from the command context.
type ConfigGetter func(ctx context.Context) *config.Config

// LoggerGetter retrieves the logger from the command context.
type LoggerGetter func(ctx context.Context) *slog.Logger

// parseExpr splits a --expr argument into label and formula. The label part
// is optional: "ipc=IPC('system.cpu')" names the query, a bare formula
// labels itself with its own text.
func parseExpr(arg string) (label, formula string) {
	if i := strings.Index(arg, "="); i >= 0 {
		return strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+1:])
	}
	return "", strings.TrimSpace(arg)
}

// buildQueries compiles the config file queries plus any --expr flags.
func buildQueries(cfg *config.Config, exprs []string) ([]*statmill.Query, error) {
	var queries []*statmill.Query
	for _, qc := range cfg.Queries {
		q, err := statmill.CompileQuery(qc.Label, qc.Formula)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	for _, arg := range exprs {
		label, formula := parseExpr(arg)
		q, err := statmill.CompileQuery(label, formula)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries: give --expr flags or a queries section in the config file")
	}
	return queries, nil
}

// openSource opens the dump stream named by args, or stdin when absent,
// and applies the configured start/stop/step window. The returned closer
// is nil for stdin.
func openSource(ctx context.Context, cfg *config.Config, args []string) (dump.Source, io.Closer, error) {
	var (
		r    io.Reader = os.Stdin
		name           = "<stdin>"
		c    io.Closer
	)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		r, name, c = f, args[0], f
	}

	var src dump.Source = dump.NewReader(r, name)
	if cfg.Start > 0 || cfg.Stop > 0 || cfg.Step > 1 {
		src = dump.Slice(src, cfg.Start, cfg.Stop, cfg.Step)
	}
	return dump.WithContext(ctx, src), c, nil
}
