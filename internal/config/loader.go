package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// load resolves a config by id.
// Search order: customPath -> ~/.arcade/configs/<id>.yaml -> ./configs/<id>.yaml -> embedded default.
// A custom path that cannot be read or parsed is an error; the other
// locations are skipped silently when missing or broken.
func load[T any](id, customPath string, embedded []byte, fallback func() T) (T, error) {
	if customPath != "" {
		cfg := fallback()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	filename := id + ".yaml"

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if cfg, ok := tryFile(userCfgPath, fallback); ok {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, ok := tryFile(filepath.Join("configs", filename), fallback); ok {
		return cfg, nil
	}

	// Use embedded default YAML
	cfg := fallback()
	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// tryFile parses path over the hardcoded defaults, so a partial file only
// overrides the keys it names.
func tryFile[T any](path string, fallback func() T) (T, bool) {
	cfg := fallback()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// LoadShooter loads the shooter configuration.
func LoadShooter(customPath string) (ShooterConfig, error) {
	return load("shooter", customPath, defaultShooterYAML, DefaultShooterConfig)
}

// LoadPaddle loads the paddle game configuration.
func LoadPaddle(customPath string) (PaddleConfig, error) {
	return load("paddle", customPath, defaultPaddleYAML, DefaultPaddleConfig)
}

// LoadBrick loads the brick game configuration.
func LoadBrick(customPath string) (BrickConfig, error) {
	return load("brick", customPath, defaultBrickYAML, DefaultBrickConfig)
}

// LoadMotion loads the input and sensor bridge configuration.
func LoadMotion(customPath string) (MotionConfig, error) {
	return load("motion", customPath, defaultMotionYAML, DefaultMotionConfig)
}

// ApplyShooterPreset modifies the config based on a difficulty preset.
func ApplyShooterPreset(cfg *ShooterConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust spawning based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Obstacles.SpawnEvery = 80
		cfg.Obstacles.BaseSpeed = 1.5
	case DifficultyHard:
		cfg.Obstacles.SpawnEvery = 40
		cfg.Obstacles.BaseSpeed = 3
	}
}

// ApplyPaddlePreset modifies the config based on a difficulty preset.
// The paddle game has no progression; presets change the opponent.
func ApplyPaddlePreset(cfg *PaddleConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Opponent.Speed = 2.5
		cfg.Opponent.DeadZone = 16
		cfg.Gameplay.WinScore = 3
	case DifficultyHard:
		cfg.Opponent.Speed = 5
		cfg.Opponent.DeadZone = 4
		cfg.Gameplay.WinScore = 7
	}
}

// ApplyBrickPreset modifies the config based on a difficulty preset.
func ApplyBrickPreset(cfg *BrickConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Paddle.Width = 110
		cfg.Ball.VX, cfg.Ball.VY = 2.5, -2.5
	case DifficultyHard:
		cfg.Paddle.Width = 60
		cfg.Ball.VX, cfg.Ball.VY = 4, -4
	}
}
