package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/slingshot-trial/internal/config"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default experiment config",
	Long: `Print the built-in experiment YAML. Save it as
~/.slingshot/experiment.yaml or ./configs/experiment.yaml to customize it.

Examples:
  slingshot defaults > ~/.slingshot/experiment.yaml`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	},
}
