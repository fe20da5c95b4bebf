package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/hep/config"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hep",
	Short: "Heuristic rewrite planner for relational operator graphs.",
	Long: `hep rewrites relational operator graphs described in yaml plan files
by executing rule programs until they reach a fixpoint.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file, ~/.hep/config.yml by default.")
}

func readConfig() (*config.Config, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read config")
	}
	return cfg, nil
}
