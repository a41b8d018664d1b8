// Package sim is the frame simulation core shared by every arcade variant:
// the entity store, kinematics helpers, the opponent heuristic and the
// session state machine. Variant behaviour is plugged in through Rules.
package sim

import "github.com/vovakirdan/tilt-arcade/internal/core"

// Kind classifies a body.
type Kind int

const (
	KindPlayer Kind = iota
	KindObstacle
	KindProjectile
	KindBall
	KindPaddle
	KindBrick
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindObstacle:
		return "obstacle"
	case KindProjectile:
		return "projectile"
	case KindBall:
		return "ball"
	case KindPaddle:
		return "paddle"
	case KindBrick:
		return "brick"
	default:
		return "unknown"
	}
}

// Body is one simulated entity.
//
// Pos is the top-left corner of the W x H extent used for clamping and rect
// tests, and the centre used for circle tests with Radius. Variants pick the
// reading that matches their collision model.
type Body struct {
	Kind    Kind
	Pos     core.Vec2
	Vel     core.Vec2
	Radius  float64
	W, H    float64
	Speed   float64
	Clamped bool // kept inside the playfield, never integrated
	Dead    bool // removed at the end of the frame
}

// Circle returns the body's circle view.
func (b *Body) Circle() core.Circle {
	return core.Circle{C: b.Pos, R: b.Radius}
}

// Rect returns the body's rect view.
func (b *Body) Rect() core.Rect {
	return core.NewRect(b.Pos.X, b.Pos.Y, b.W, b.H)
}

// CenterX returns the horizontal centre of the rect extent.
func (b *Body) CenterX() float64 {
	return b.Pos.X + b.W/2
}

// Live reports whether the body takes part in the current pass.
func (b *Body) Live() bool {
	return b != nil && !b.Dead
}
