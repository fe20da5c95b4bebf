package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var explainOutput string

var explainCmd = &cobra.Command{
	Use:   "explain <plan.yml>",
	Short: "Print a plan as it is, without rewriting it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readPlan(args[0])
		if err != nil {
			return err
		}
		return writeGraph(cmd.OutOrStdout(), g, explainOutput)
	},
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List the configured programs and their instructions.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		for _, name := range cfg.ProgramNames() {
			prog, err := cfg.Program(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s\n", name, prog)
		}
		return nil
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainOutput, "output", "json", "Output format, json or dot.")
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(programsCmd)
}
