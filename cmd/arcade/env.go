package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/motion/bridge"
)

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// newLogger creates a logger at --log-level writing to w.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// fileLogger logs to ~/.arcade/arcade.log. The alt screen owns the
// terminal, so local play never logs to stderr.
func fileLogger() (*log.Logger, func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".arcade")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "arcade.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger, err := newLogger(f, "arcade")
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { f.Close() }, nil
}

// startBridge serves the sensor bridge on addr until ctx is cancelled.
func startBridge(ctx context.Context, addr string, mc config.MotionConfig, logger *log.Logger) *bridge.Server {
	srv := bridge.NewServer(bridge.Config{
		StartTimeout:      mc.Bridge.StartTimeout,
		PermissionTimeout: mc.Bridge.PermissionTimeout,
		RefreshRate:       mc.PollInterval,
		RateLimit:         mc.Bridge.RateLimit,
		Burst:             mc.Bridge.Burst,
		Logger:            logger.WithPrefix("bridge"),
	})
	go func() {
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			logger.Error("sensor bridge stopped", "error", err)
		}
	}()
	return srv
}

// motionOptions builds normalizer options from config, lending it the
// bridge sensors when one is running.
func motionOptions(mc config.MotionConfig, br *bridge.Server, logger *log.Logger) motion.Options {
	opts := motion.Options{
		PollInterval: mc.PollInterval,
		Saturation: motion.Saturation{
			Acceleration: mc.AccelSaturation,
			Orientation:  mc.OrientationSaturation,
		},
		Logger: logger,
	}
	if br != nil {
		opts.Host = br.Host()
		opts.Native = br.Native()
	}
	return opts
}
