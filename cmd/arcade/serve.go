package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion/bridge"
	"github.com/vovakirdan/tilt-arcade/internal/platform/tui"
)

var (
	flagSSHAddr        string
	flagHostKey        string
	flagIdleTimeout    int
	flagServeSensor    string
	flagServeRecord    bool
	flagServeMotionCfg string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that allows users to connect and play games.

Each SSH connection gets its own session with a game picker menu and its
own keyboard input. With --sensor-addr the server also runs the sensor
bridge and lends its motion sensors to every session.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Examples:
  arcade serve                           # Listen on :23234 with auto-generated key
  arcade serve --ssh :2222               # Listen on port 2222
  arcade serve --host-key ./my_host_key  # Use specific host key
  arcade serve --record                  # Journal every run played
  arcade serve --sensor-addr :8765       # Accept phone sensors

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeSensor, "sensor-addr", "", "Serve the sensor bridge on this address (e.g. :8765)")
	serveCmd.Flags().BoolVar(&flagServeRecord, "record", false, "Save every run to the replay journal")
	serveCmd.Flags().StringVar(&flagServeMotionCfg, "motion-config", "", "Path to custom motion config YAML")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, err := newLogger(os.Stderr, "arcade-ssh")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mc, err := config.LoadMotion(flagServeMotionCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading motion config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var br *bridge.Server
	if flagServeSensor != "" {
		br = startBridge(ctx, flagServeSensor, mc, logger)
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		Record:      flagServeRecord,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Bridge:      br,
		Motion:      motionOptions(mc, nil, logger),
		HoldWindow:  mc.HoldWindow,
		Logger:      logger,
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting arcade SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	if br != nil {
		fmt.Printf("Sensor bridge on ws://%s/ws\n", flagServeSensor)
	}
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
