package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

var flagReplayLimit int

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List recorded runs",
	Long: `Display the most recent runs saved in the replay journal.

Runs are recorded by 'arcade play --record', by 'arcade menu' and by
'arcade serve --record'.

Examples:
  arcade replays
  arcade replays --limit 50`,
	Args: cobra.NoArgs,
	Run:  runReplays,
}

func init() {
	replaysCmd.Flags().IntVar(&flagReplayLimit, "limit", 20, "Number of replays to show")
}

func runReplays(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening replay journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	replays, err := store.Replays(flagReplayLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving replays: %v\n", err)
		os.Exit(1)
	}

	if len(replays) == 0 {
		fmt.Println("No replays recorded yet.")
		fmt.Println()
		fmt.Println("Play 'arcade play <game> --record' to record one!")
		return
	}

	// Print header
	fmt.Printf("  %-36s  %-8s  %-7s  %-6s  %s\n", "ID", "Game", "Preset", "Frames", "Date")
	fmt.Printf("  %-36s  %-8s  %-7s  %-6s  %s\n", "--", "----", "------", "------", "----")

	for _, r := range replays {
		preset := r.Preset
		if preset == "" {
			preset = "normal"
		}
		fmt.Printf("  %-36s  %-8s  %-7s  %-6d  %s\n", r.ID, r.Variant, preset, r.Frames, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'arcade replay <id>' to re-simulate a run.")
}
