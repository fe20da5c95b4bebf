package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cube2222/hep/config"
	"github.com/cube2222/hep/explain"
	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/logs"
	"github.com/cube2222/hep/optimizer"
	"github.com/cube2222/hep/planner"
	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/telemetry"
)

var (
	programName string
	output      string
	showStats   bool
	showMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yml>",
	Short: "Rewrite a plan and print the result.",
	Example: `hep run plan.yml
hep run --program main --stats plan.yml
hep run --output dot plan.yml | dot -Tpng > plan.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		logger, err := logs.New(cmd.ErrOrStderr(), cfg.Logging)
		if err != nil {
			return errors.Wrap(err, "couldn't create logger")
		}
		defer logger.Sync()

		g, err := readPlan(args[0])
		if err != nil {
			return err
		}

		prog := optimizer.DefaultProgram()
		if programName != "" {
			prog, err = cfg.Program(programName)
			if err != nil {
				return errors.Wrap(err, "couldn't build program")
			}
		}

		metrics := telemetry.NewMetrics()
		registry := prometheus.NewRegistry()
		registry.MustRegister(metrics.PrometheusCollectors()...)

		p := planner.New(
			optimizer.NewRegistry(),
			planner.WithLogger(logger),
			planner.WithMetrics(metrics),
			planner.WithMaxPasses(cfg.Planner.MaxPasses),
		)
		result, err := p.Execute(ctx, prog, g)
		if err != nil {
			return errors.Wrapf(err, "couldn't execute program %s", describeProgram(prog))
		}

		if showStats {
			explain.FiringTable(cmd.ErrOrStderr(), result)
		}
		if showMetrics {
			if err := telemetry.WriteTable(cmd.ErrOrStderr(), registry); err != nil {
				return err
			}
		}
		return writeGraph(cmd.OutOrStdout(), g, output)
	},
}

func describeProgram(prog *program.Program) string {
	if programName != "" {
		return fmt.Sprintf("'%s'", programName)
	}
	return fmt.Sprintf("%d", prog.ID())
}

func readPlan(path string) (*graph.Graph, error) {
	plan, err := config.ReadPlan(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read plan")
	}
	g, _, err := plan.Graph()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't build plan graph")
	}
	return g, nil
}

func writeGraph(w io.Writer, g *graph.Graph, format string) error {
	switch format {
	case "json":
		out, err := explain.JSON(g)
		if err != nil {
			return errors.Wrap(err, "couldn't serialize plan")
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "dot":
		out, err := graph.Show(g)
		if err != nil {
			return errors.Wrap(err, "couldn't visualize plan")
		}
		_, err = fmt.Fprintln(w, out.String())
		return err
	default:
		return errors.Errorf("unknown output format '%s', expected json or dot", format)
	}
}

func init() {
	runCmd.Flags().StringVar(&programName, "program", "", "Configured program to execute instead of the default one.")
	runCmd.Flags().StringVar(&output, "output", "json", "Output format, json or dot.")
	runCmd.Flags().BoolVar(&showStats, "stats", false, "Print statistics of every rule firing to stderr.")
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print planner metrics to stderr.")
	rootCmd.AddCommand(runCmd)
}
