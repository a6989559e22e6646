// slingshot runs slingshot trials in the terminal, locally or over SSH.
//
// Usage:
//
//	slingshot run               - Run the experiment in this terminal
//	slingshot serve             - Start SSH server for remote participants
//	slingshot results           - Browse recorded trials
//	slingshot list              - List available stimuli
//	slingshot defaults          - Print the default experiment YAML
//
// Global flags:
//
//	--fps <rate>          - Host loop frame rate (default: 60)
//	--db <path>           - Results database (default: ~/.slingshot/results.db)
//	--log-file <path>     - Write logs to a file
//	--log-level <level>   - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import stimuli to register them
	_ "github.com/vovakirdan/slingshot-trial/internal/games/slingshot"
)

var (
	// Global flags
	flagFPS      int
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "slingshot",
	Short: "Slingshot trials in your terminal",
	Long: `Slingshot runs a sequence of slingshot trials. Participants drag the
ball back with the mouse, release it at the target and earn cents for hits.

Available commands:
  run       - Run the experiment in this terminal
  serve     - Start SSH server for remote participants
  results   - Browse recorded trials
  list      - Show all available stimuli
  defaults  - Print the default experiment config

Examples:
  slingshot run
  slingshot run --experiment ./pilot.yaml --participant p01
  slingshot serve --ssh :2222
  slingshot results --limit 50`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Host loop frame rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.slingshot/results.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(defaultsCmd)
}

// newLogger builds the command logger. fallback receives logs when no
// --log-file is given. The returned close func must be called on exit.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	w := fallback
	closeFn := func() {}
	if flagLogFile != "" {
		f, openErr := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", openErr)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn, nil
}
