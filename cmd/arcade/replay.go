package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

var flagWatch bool

var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Re-simulate a recorded run",
	Long: `Re-run a recorded run from its seed and journaled inputs and print the
final state. The id may be a unique prefix, as shown by the replay browser.

With --watch the run is played back in the terminal instead.

Examples:
  arcade replay 1b4e28ba
  arcade replay 1b4e28ba --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagWatch, "watch", false, "Play the run back in the terminal")
}

func runReplay(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening replay journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	id, err := resolveReplayID(store, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagWatch {
		width, height := terminalSize()
		if err := watchReplay(store, id, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rep, frames, err := store.Load(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rules, err := registry.Create(rep.Variant, registry.Options{Preset: config.DifficultyPreset(rep.Preset)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	snap, err := storage.Rerun(rules, rep, frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Replay %s - %s (seed %d)\n", rep.ID, rules.Title(), rep.Seed)
	fmt.Println()
	fmt.Printf("  Frames:  %d of %d recorded\n", snap.Frame, rep.Frames)
	fmt.Printf("  Phase:   %s\n", snap.Phase)
	if snap.Opponent != nil {
		fmt.Printf("  Score:   %d : %d\n", snap.Score, snap.OpponentScore)
	} else {
		fmt.Printf("  Score:   %d\n", snap.Score)
	}
	if len(snap.Bricks) > 0 {
		fmt.Printf("  Bricks:  %d left\n", len(snap.Bricks))
	}
	if snap.Player != nil {
		fmt.Printf("  Player:  (%.1f, %.1f)\n", snap.Player.Pos.X, snap.Player.Pos.Y)
	}
}

// resolveReplayID expands a unique id prefix among the recent replays.
func resolveReplayID(store *storage.Store, prefix string) (string, error) {
	if _, _, err := store.Load(prefix); err == nil {
		return prefix, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	replays, err := store.Replays(1000)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range replays {
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("replay prefix %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, prefix)
	}
	return match, nil
}
