// cmd_run.go - Run Command fuer Plandateien
// Hauptfunktionen: RunHandler
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/graph"
	"github.com/ollama/opexec/logutil"
	"github.com/ollama/opexec/ml"
	"github.com/ollama/opexec/plan"
)

// RunHandler - Laedt einen Plan, spielt alle Scopes der Reihe nach ab und
// gibt die Tensoren aus
func RunHandler(cmd *cobra.Command, args []string) error {
	maxIterations, _ := cmd.Flags().GetUint64("max-iterations")
	only, _ := cmd.Flags().GetStringSlice("tensor")
	quiet, _ := cmd.Flags().GetBool("quiet")

	path := envconfig.Plans()
	if len(args) > 0 {
		path = args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(envconfig.Plans(), path)
		}
	}

	p, err := plan.Load(path)
	if err != nil {
		return err
	}

	g, blocks, err := p.Build()
	if err != nil {
		return err
	}

	exec := graph.NewExecutor(g, newInvoker(),
		graph.WithExecutorLogger(slog.Default()),
		graph.WithMaxIterations(maxIterations),
	)

	var data [][]string
	for _, b := range blocks {
		r, err := exec.Run(cmd.Context(), b)
		if err != nil {
			return err
		}

		s := b.Scope()
		logutil.TraceContext(cmd.Context(), "scope replayed", "run", r.RunID, "scope", s.Name(), "iterations", r.Iterations)
		data = append(data, []string{
			strconv.Itoa(s.ID()),
			s.Name(),
			strconv.Itoa(r.Iterations),
			strconv.Itoa(r.Nodes),
			r.Duration.Round(time.Microsecond).String(),
		})
	}

	out := cmd.OutOrStdout()
	if !quiet {
		table := newTable(out, []string{"ID", "SCOPE", "ITERATIONS", "NODES", "TIME"})
		table.AppendBulk(data)
		table.Render()
		fmt.Fprintln(out)
	}

	names := only
	if len(names) == 0 {
		names = g.TensorNames()
	}
	for _, name := range names {
		t, ok := g.Tensor(name)
		if !ok {
			return fmt.Errorf("unknown tensor %q", name)
		}
		fmt.Fprintf(out, "%s\n%s\n\n", t, ml.Dump(t))
	}

	return nil
}

// newRunCmd - Erstellt den run Command
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [PLAN]",
		Short: "Build a plan and replay its scopes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunHandler,
	}

	runCmd.Flags().Uint64("max-iterations", 0, "Upper bound on replays of a conditional scope (default OPEXEC_MAX_LOOP_ITERATIONS)")
	runCmd.Flags().StringSlice("tensor", nil, "Only print these tensors")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the scope summary")

	return runCmd
}
