// Package config provides YAML-based variant configuration loading and
// difficulty management for the arcade platform.
package config

import (
	"fmt"
	"time"
)

// Playfield is the logical size of a variant's playfield in units.
type Playfield struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ShooterConfig contains all configuration for the vertical shooter.
type ShooterConfig struct {
	Playfield   Playfield          `yaml:"playfield"`
	Player      ShooterPlayer      `yaml:"player"`
	Obstacles   ShooterObstacles   `yaml:"obstacles"`
	Projectiles ShooterProjectiles `yaml:"projectiles"`
	Scoring     ShooterScoring     `yaml:"scoring"`
	Difficulty  DifficultyConfig   `yaml:"difficulty"`
}

// ShooterPlayer defines the player ship.
type ShooterPlayer struct {
	Size            float64 `yaml:"size"`
	Speed           float64 `yaml:"speed"`
	GyroSensitivity float64 `yaml:"gyro_sensitivity"`
	BottomOffset    float64 `yaml:"bottom_offset"` // distance of the spawn point from the bottom edge
}

// ShooterObstacles defines falling enemies.
type ShooterObstacles struct {
	Size        float64 `yaml:"size"`
	SpawnEvery  int     `yaml:"spawn_every"` // frames between spawns
	SpawnMargin float64 `yaml:"spawn_margin"`
	BaseSpeed   float64 `yaml:"base_speed"`
	SpeedJitter float64 `yaml:"speed_jitter"`
}

// ShooterProjectiles defines player shots.
type ShooterProjectiles struct {
	Size     float64       `yaml:"size"`
	Speed    float64       `yaml:"speed"`
	Cooldown time.Duration `yaml:"cooldown"`
}

// ShooterScoring defines points.
type ShooterScoring struct {
	KillPoints int `yaml:"kill_points"`
}

// PaddleConfig contains all configuration for the paddle game.
type PaddleConfig struct {
	Playfield Playfield      `yaml:"playfield"`
	Ball      PaddleBall     `yaml:"ball"`
	Paddles   PaddlePaddles  `yaml:"paddles"`
	Opponent  PaddleOpponent `yaml:"opponent"`
	Gameplay  PaddleGameplay `yaml:"gameplay"`
}

// PaddleBall defines the ball and its serve.
type PaddleBall struct {
	Radius     float64 `yaml:"radius"`
	ServeSpeed float64 `yaml:"serve_speed"` // vertical speed after a serve
	Spread     float64 `yaml:"spread"`      // horizontal serve speed range, centred on zero
}

// PaddlePaddles defines both paddles.
type PaddlePaddles struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Speed           float64 `yaml:"speed"`
	GyroSensitivity float64 `yaml:"gyro_sensitivity"`
	TopOffset       float64 `yaml:"top_offset"`
	BottomOffset    float64 `yaml:"bottom_offset"`
}

// PaddleOpponent defines the computer paddle.
type PaddleOpponent struct {
	Speed     float64 `yaml:"speed"`
	DeadZone  float64 `yaml:"dead_zone"`
	Tolerance float64 `yaml:"tolerance"`
}

// PaddleGameplay defines scoring and deflection.
type PaddleGameplay struct {
	WinScore   int     `yaml:"win_score"`
	Deflection float64 `yaml:"deflection"`
}

// BrickConfig contains all configuration for the brick game.
type BrickConfig struct {
	Playfield Playfield   `yaml:"playfield"`
	Paddle    BrickPaddle `yaml:"paddle"`
	Ball      BrickBall   `yaml:"ball"`
	Bricks    BrickGrid   `yaml:"bricks"`
}

// BrickPaddle defines the player paddle.
type BrickPaddle struct {
	X               float64 `yaml:"x"`
	Y               float64 `yaml:"y"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Speed           float64 `yaml:"speed"`
	GyroSensitivity float64 `yaml:"gyro_sensitivity"`
}

// BrickBall defines the ball's start state.
type BrickBall struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
}

// BrickGrid defines the brick wall layout.
type BrickGrid struct {
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	SpacingX float64 `yaml:"spacing_x"` // column pitch
	SpacingY float64 `yaml:"spacing_y"` // row pitch
}

// MotionConfig configures input normalization and the sensor bridge.
type MotionConfig struct {
	PollInterval          time.Duration `yaml:"poll_interval"`
	AccelSaturation       float64       `yaml:"accel_saturation"`
	OrientationSaturation float64       `yaml:"orientation_saturation"`
	HoldWindow            time.Duration `yaml:"hold_window"` // key release after no repeat
	Bridge                BridgeConfig  `yaml:"bridge"`
}

// BridgeConfig configures the WebSocket sensor bridge.
type BridgeConfig struct {
	StartTimeout      time.Duration `yaml:"start_timeout"`
	PermissionTimeout time.Duration `yaml:"permission_timeout"`
	RateLimit         float64       `yaml:"rate_limit"`
	Burst             int           `yaml:"burst"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/frames at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`  // Multiplier added to speed at max difficulty
	CadenceReduction int     `yaml:"cadence_reduction"` // Frames removed from the spawn interval at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
