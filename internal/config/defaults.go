package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/shooter.yaml
var defaultShooterYAML []byte

//go:embed defaults/paddle.yaml
var defaultPaddleYAML []byte

//go:embed defaults/brick.yaml
var defaultBrickYAML []byte

//go:embed defaults/motion.yaml
var defaultMotionYAML []byte

// DefaultShooterConfig returns the default shooter configuration.
func DefaultShooterConfig() ShooterConfig {
	return ShooterConfig{
		Playfield: Playfield{Width: 400, Height: 640},
		Player: ShooterPlayer{
			Size:            50,
			Speed:           5,
			GyroSensitivity: 1.2,
			BottomOffset:    80,
		},
		Obstacles: ShooterObstacles{
			Size:        20,
			SpawnEvery:  60,
			SpawnMargin: 40,
			BaseSpeed:   2,
			SpeedJitter: 2,
		},
		Projectiles: ShooterProjectiles{
			Size:     5,
			Speed:    8,
			Cooldown: 150 * time.Millisecond,
		},
		Scoring: ShooterScoring{KillPoints: 10},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "time",
				MaxAt: 7200, // 2 minutes at 60fps
			},
			Scaling: ScalingConfig{
				SpeedMultiplier:  0.5,
				CadenceReduction: 30,
			},
		},
	}
}

// DefaultPaddleConfig returns the default paddle game configuration.
func DefaultPaddleConfig() PaddleConfig {
	return PaddleConfig{
		Playfield: Playfield{Width: 360, Height: 640},
		Ball: PaddleBall{
			Radius:     8,
			ServeSpeed: 4,
			Spread:     6,
		},
		Paddles: PaddlePaddles{
			Width:           100,
			Height:          12,
			Speed:           8,
			GyroSensitivity: 1,
			TopOffset:       20,
			BottomOffset:    32,
		},
		Opponent: PaddleOpponent{
			Speed:     3.5,
			DeadZone:  10,
			Tolerance: 2,
		},
		Gameplay: PaddleGameplay{
			WinScore:   5,
			Deflection: 5,
		},
	}
}

// DefaultBrickConfig returns the default brick game configuration.
func DefaultBrickConfig() BrickConfig {
	return BrickConfig{
		Playfield: Playfield{Width: 800, Height: 500},
		Paddle: BrickPaddle{
			X:               100,
			Y:               450,
			Width:           80,
			Height:          20,
			Speed:           5,
			GyroSensitivity: 1,
		},
		Ball: BrickBall{
			X:      120,
			Y:      400,
			Radius: 10,
			VX:     3,
			VY:     -3,
		},
		Bricks: BrickGrid{
			Rows:     5,
			Cols:     8,
			Width:    50,
			Height:   20,
			OffsetX:  20,
			OffsetY:  50,
			SpacingX: 60,
			SpacingY: 30,
		},
	}
}

// DefaultMotionConfig returns the default input configuration.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		PollInterval:          16 * time.Millisecond,
		AccelSaturation:       5,
		OrientationSaturation: 45,
		HoldWindow:            180 * time.Millisecond,
		Bridge: BridgeConfig{
			StartTimeout:      2 * time.Second,
			PermissionTimeout: 30 * time.Second,
			RateLimit:         240,
			Burst:             60,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config id.
func GetDefaultYAML(id string) []byte {
	switch id {
	case "shooter":
		return defaultShooterYAML
	case "paddle":
		return defaultPaddleYAML
	case "brick":
		return defaultBrickYAML
	case "motion":
		return defaultMotionYAML
	default:
		return nil
	}
}
