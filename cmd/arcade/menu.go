package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/platform/tui"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a game picker menu",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game, Tab to browse
recorded runs. After a game ends, you return to the menu to play again.
Every run started from the menu is recorded.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select game
  Tab          - Replays
  Q            - Quit

Examples:
  arcade menu
  arcade menu --fps 30
  arcade menu --sensor-addr :8765`,
	Run: runMenu,
}

func init() {
	addGameFlags(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) {
	opts, err := gameOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := fileLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc, br, err := localInput(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading motion config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open replay journal: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	// One normalizer for the whole process: its sensor tier and permission
	// outcome carry over from run to run.
	input := motion.New(motionOptions(mc, br, logger))
	defer input.Close()

	width, height := terminalSize()

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		width, height = menuResult.Width, menuResult.Height

		if menuResult.Quit {
			break
		}

		if menuResult.WantsReplays {
			if !browseReplays(store, width, height, logger) {
				break // User quit from the browser
			}
			continue
		}

		rules, err := registry.Create(menuResult.GameID, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		if err := tui.Run(rules, input, tui.Options{
			Width:      width,
			Height:     height,
			TickRate:   flagFPS,
			Seed:       flagSeed,
			HoldWindow: mc.HoldWindow,
			Store:      store,
			Preset:     opts.Preset,
			Logger:     logger,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}

		// Loop back to menu
	}
}

// browseReplays runs the replay browser until the user goes back. It
// returns false when the user quit instead.
func browseReplays(store *storage.Store, width, height int, logger *log.Logger) bool {
	for {
		id, goBack, err := tui.RunReplays(store, width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		if id == "" {
			return goBack
		}

		if err := watchReplay(store, id, width, height); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.Warn("replay vanished", "id", id)
				continue
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
	}
}

// watchReplay plays a recorded run in the terminal.
func watchReplay(store *storage.Store, id string, width, height int) error {
	if store == nil {
		return storage.ErrNotFound
	}
	rep, frames, err := store.Load(id)
	if err != nil {
		return err
	}
	rules, err := registry.Create(rep.Variant, registry.Options{Preset: config.DifficultyPreset(rep.Preset)})
	if err != nil {
		return err
	}
	return tui.RunReplay(rules, rep, frames, tui.Options{
		Width:    width,
		Height:   height,
		TickRate: flagFPS,
	})
}
