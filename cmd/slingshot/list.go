package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/slingshot-trial/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available stimuli",
	Long:  `Shows the stimuli a trial's "stimulus" key can name.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	stimuli := registry.List()

	if len(stimuli) == 0 {
		fmt.Println("No stimuli available.")
		return
	}

	fmt.Println("Available stimuli:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range stimuli {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, s := range stimuli {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}
}
