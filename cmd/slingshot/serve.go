package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/slingshot-trial/internal/config"
	"github.com/vovakirdan/slingshot-trial/internal/experiment"
	"github.com/vovakirdan/slingshot-trial/internal/platform/tui"
)

var (
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  int
	flagServeExpPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the experiment SSH server",
	Long: `Start an SSH server that runs the experiment for every participant who
connects. The SSH user name is stored as the participant of each trial.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.slingshot/host_key

Examples:
  slingshot serve                           # Listen on :23234 with auto-generated key
  slingshot serve --ssh :2222               # Listen on port 2222
  slingshot serve --host-key ./my_host_key  # Use specific host key
  slingshot serve --db ./results.db         # Use specific database

Participants connect with:
  ssh p01@localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeExpPath, "experiment", "", "Path to experiment YAML")
}

func runServe(_ *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger("slingshot-ssh", os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	exp, err := config.LoadExperiment(flagServeExpPath)
	if err != nil {
		return fmt.Errorf("loading experiment: %w", err)
	}
	if err := experiment.Check(exp); err != nil {
		return err
	}
	if err := exp.Validate(); err != nil {
		logger.Warn("experiment has trials that never end on their own", "error", err)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Experiment = exp
	cfg.FrameRate = flagFPS

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting slingshot SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
