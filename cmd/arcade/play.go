package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/motion/bridge"
	"github.com/vovakirdan/tilt-arcade/internal/platform/tui"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

var (
	flagConfig       string
	flagDifficulty   string
	flagMotionConfig string
	flagSensorAddr   string
	flagRecord       bool
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows/WASD  - Move
  Space/F      - Fire (shooter)
  Mouse        - Drag to place the paddle
  R/Enter      - Restart (after game over)
  Esc/Q        - Quit

Motion input:
  With --sensor-addr the arcade serves a WebSocket sensor bridge. A page
  embedding a host sensor, or a phone browser streaming device motion,
  connects to ws://<addr>/ws and steers the game by tilt.

Difficulty options:
  easy, normal, hard, fixed

Examples:
  arcade play shooter
  arcade play paddle --difficulty hard
  arcade play shooter --sensor-addr :8765
  arcade play brick --config ./my-brick.yaml --record`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	addGameFlags(playCmd)
	playCmd.Flags().BoolVar(&flagRecord, "record", false, "Save the run to the replay journal")
}

// addGameFlags registers the flags shared by play and menu.
func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	cmd.Flags().StringVar(&flagMotionConfig, "motion-config", "", "Path to custom motion config YAML")
	cmd.Flags().StringVar(&flagSensorAddr, "sensor-addr", "", "Serve the sensor bridge on this address (e.g. :8765)")
}

// gameOptions resolves --config and --difficulty.
func gameOptions() (registry.Options, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return registry.Options{}, err
	}
	return registry.Options{ConfigPath: flagConfig, Preset: preset}, nil
}

// localInput loads the motion config and, with --sensor-addr, starts the
// bridge. The returned normalizer belongs to the caller.
func localInput(ctx context.Context, logger *log.Logger) (config.MotionConfig, *bridge.Server, error) {
	mc, err := config.LoadMotion(flagMotionConfig)
	if err != nil {
		return mc, nil, err
	}
	if flagSensorAddr == "" {
		return mc, nil, nil
	}
	return mc, startBridge(ctx, flagSensorAddr, mc, logger), nil
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := args[0]

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}

	opts, err := gameOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rules, err := registry.Create(gameID, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
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

	var store *storage.Store
	if flagRecord {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open replay journal: %v\n", err)
			// Continue without recording - game still works
			store = nil
		} else {
			defer store.Close()
		}
	}

	width, height := terminalSize()
	input := motion.New(motionOptions(mc, br, logger))
	defer input.Close()

	runErr := tui.Run(rules, input, tui.Options{
		Width:      width,
		Height:     height,
		TickRate:   flagFPS,
		Seed:       flagSeed,
		HoldWindow: mc.HoldWindow,
		Store:      store,
		Preset:     opts.Preset,
		Logger:     logger,
	})
	if runErr != nil {
		input.Close()
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
