package motion

import "github.com/vovakirdan/tilt-arcade/internal/core"

// Default saturation thresholds. A raw value at or beyond the threshold maps
// to full deflection.
const (
	DefaultAccelSaturation       = 5.0  // m/s²
	DefaultOrientationSaturation = 45.0 // degrees
)

// Normalize maps a raw sensor value linearly onto [-1, 1], saturating at
// ±saturation. A non-positive saturation yields zero.
func Normalize(raw, saturation float64) float64 {
	if saturation <= 0 {
		return 0
	}
	return core.ClampF(raw/saturation, -1, 1)
}

// Saturation holds the per-kind thresholds used by a Normalizer.
type Saturation struct {
	Acceleration float64
	Orientation  float64
}

// DefaultSaturation returns the stock thresholds.
func DefaultSaturation() Saturation {
	return Saturation{
		Acceleration: DefaultAccelSaturation,
		Orientation:  DefaultOrientationSaturation,
	}
}

// For returns the threshold for the given sensor kind.
func (s Saturation) For(k Kind) float64 {
	if k == KindOrientation {
		return s.Orientation
	}
	return s.Acceleration
}
