package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/slingshot-trial/internal/config"
	"github.com/vovakirdan/slingshot-trial/internal/core"
	"github.com/vovakirdan/slingshot-trial/internal/experiment"
	"github.com/vovakirdan/slingshot-trial/internal/platform/tui"
	"github.com/vovakirdan/slingshot-trial/internal/storage"
	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

var (
	flagExperiment  string
	flagParticipant string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the experiment in this terminal",
	Long: `Run every trial of the experiment in order.

Controls:
  Mouse drag  - Pull the ball back, release to shoot
  ?           - Toggle help
  Q/Ctrl+C    - Quit (the current trial is recorded as aborted)

The experiment config is looked up in this order:
  --experiment <file>
  ~/.slingshot/experiment.yaml
  ./configs/experiment.yaml
  built-in defaults (see 'slingshot defaults')

Examples:
  slingshot run
  slingshot run --participant p01
  slingshot run --experiment ./pilot.yaml --fps 30`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagExperiment, "experiment", "", "Path to experiment YAML")
	runCmd.Flags().StringVar(&flagParticipant, "participant", "", "Participant identifier stored with each trial")
}

func runRun(_ *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("run needs an interactive terminal; use 'slingshot serve' for remote sessions")
	}

	// The alt screen owns the terminal, so logs only go to --log-file.
	logger, closeLog, err := newLogger("slingshot", io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	exp, err := config.LoadExperiment(flagExperiment)
	if err != nil {
		return fmt.Errorf("loading experiment: %w", err)
	}
	if err := experiment.Check(exp); err != nil {
		return err
	}
	if err := exp.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	warnTerminalSize(exp)

	// Open result storage
	opts := tui.Options{
		Experiment:  exp,
		FrameRate:   flagFPS,
		Participant: flagParticipant,
		Logger:      logger,
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		// Continue without storage - trials still run
	} else {
		defer store.Close()
		opts.Saver = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	opts.Context = ctx

	summary, err := tui.Run(opts)
	printSummary(os.Stdout, summary)
	return err
}

// Screen chrome around the canvas: frame border columns, and the header,
// border, prompt and help rows.
const (
	chromeCols = 2
	chromeRows = 5
)

// warnTerminalSize prints a warning when a canvas of the experiment does
// not fit the current terminal.
func warnTerminalSize(exp config.Experiment) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return
	}
	screen := core.RuntimeConfig{ScreenW: width, ScreenH: height, FrameRate: flagFPS}

	for i, spec := range exp.Trials {
		if len(spec.CanvasSize) != 2 {
			continue
		}
		h, w := spec.CanvasSize[0]+trial.DefaultFeedbackHeight, spec.CanvasSize[1]
		if !screen.Fits(w, h, chromeCols, chromeRows) {
			cols, rows := core.CellsForPixels(w, h)
			fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d, trial %d needs %dx%d\n",
				width, height, i+1, cols+chromeCols, rows+chromeRows)
		}
	}
}

func printSummary(w io.Writer, summary experiment.Summary) {
	if len(summary.Records) == 0 {
		return
	}

	fmt.Fprintf(w, "Session %s\n", summary.SessionID)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-5s  %-10s  %-10s  %-5s  %-8s  %s\n", "Trial", "Stimulus", "Reason", "Hits", "Earnings", "Duration")
	fmt.Fprintf(w, "  %-5s  %-10s  %-10s  %-5s  %-8s  %s\n", "-----", "--------", "------", "----", "--------", "--------")
	for _, rec := range summary.Records {
		fmt.Fprintf(w, "  %-5d  %-10s  %-10s  %-5d  %-8s  %s\n",
			rec.Index,
			rec.Stimulus,
			rec.Reason,
			rec.Result.TotalHits,
			fmt.Sprintf("%d¢", rec.Earnings()),
			rec.Duration.Round(10*time.Millisecond),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total earnings: %d cents\n", summary.Earnings())
}
