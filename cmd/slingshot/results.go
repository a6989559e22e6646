package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/slingshot-trial/internal/platform/tui"
	"github.com/vovakirdan/slingshot-trial/internal/storage"
)

var (
	flagSession string
	flagLimit   int
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show recorded trials",
	Long: `Browse recorded trials. In a terminal this opens an interactive browser
of sessions; otherwise, or with --session, the trials are printed as a table.

Examples:
  slingshot results
  slingshot results --limit 50
  slingshot results --session 1f0c6a9e-... > trials.txt`,
	Args: cobra.NoArgs,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&flagSession, "session", "", "Only show trials of this session")
	resultsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of recent trials to print")
}

func runResults(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	fd := int(os.Stdout.Fd())
	if flagSession == "" && term.IsTerminal(fd) {
		width, height := 80, 24 // Defaults
		if w, h, sizeErr := term.GetSize(fd); sizeErr == nil {
			width, height = w, h
		}
		return tui.RunResults(store, width, height)
	}

	var trials []storage.TrialRecord
	if flagSession != "" {
		trials, err = store.SessionTrials(flagSession)
	} else {
		trials, err = store.RecentTrials(flagLimit)
	}
	if err != nil {
		return fmt.Errorf("retrieving trials: %w", err)
	}

	if len(trials) == 0 {
		fmt.Println("No trials recorded yet.")
		fmt.Println()
		fmt.Println("Run 'slingshot run' to record the first session.")
		return nil
	}

	printTrials(os.Stdout, trials)
	return nil
}

func printTrials(w io.Writer, trials []storage.TrialRecord) {
	fmt.Fprintf(w, "  %-36s  %-12s  %-5s  %-9s  %-5s  %-5s  %-8s  %s\n",
		"Session", "Participant", "Trial", "Reason", "Shots", "Hits", "Earnings", "Date")
	fmt.Fprintf(w, "  %-36s  %-12s  %-5s  %-9s  %-5s  %-5s  %-8s  %s\n",
		"-------", "-----------", "-----", "------", "-----", "----", "--------", "----")

	total := 0
	for _, rec := range trials {
		participant := rec.Participant
		if participant == "" {
			participant = "-"
		}
		fmt.Fprintf(w, "  %-36s  %-12s  %-5d  %-9s  %-5d  %-5d  %-8s  %s\n",
			rec.SessionID,
			participant,
			rec.TrialIndex,
			rec.EndReason,
			rec.TotalTrials,
			rec.TotalHits,
			fmt.Sprintf("%d¢", rec.Earnings()),
			rec.StartedAt.Format("2006-01-02 15:04"),
		)
		total += rec.Earnings()
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total earnings: %d cents\n", total)
}
