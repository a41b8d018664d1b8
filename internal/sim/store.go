package sim

import (
	"math/rand"

	"github.com/vovakirdan/tilt-arcade/internal/core"
)

// Store owns every body of one run. It is discarded on restart.
type Store struct {
	// Singletons, created by Rules.Setup and mutated in place. Any may be nil.
	Player   *Body
	Opponent *Body
	Ball     *Body

	// Dynamic bodies, in declaration order. Order is the collision tie-break.
	Obstacles   []*Body
	Projectiles []*Body
	Bricks      []*Body

	Bounds core.Rect
	Frame  int
	Rng    *rand.Rand
}

// NewStore creates an empty store for a playfield of the given bounds.
func NewStore(bounds core.Rect, seed int64) *Store {
	return &Store{
		Bounds: bounds,
		Rng:    rand.New(rand.NewSource(seed)),
	}
}

// Bodies returns every body in a fixed order: singletons first, then
// obstacles, projectiles and bricks.
func (s *Store) Bodies() []*Body {
	out := make([]*Body, 0, 3+len(s.Obstacles)+len(s.Projectiles)+len(s.Bricks))
	for _, b := range []*Body{s.Player, s.Opponent, s.Ball} {
		if b != nil {
			out = append(out, b)
		}
	}
	out = append(out, s.Obstacles...)
	out = append(out, s.Projectiles...)
	out = append(out, s.Bricks...)
	return out
}

// ClampBodies keeps the extent of every clamped body inside the bounds.
func (s *Store) ClampBodies() {
	for _, b := range s.Bodies() {
		if b.Clamped {
			ClampInto(b, s.Bounds)
		}
	}
}

// ClampInto moves b so its W x H extent lies inside r.
func ClampInto(b *Body, r core.Rect) {
	b.Pos.X = core.ClampF(b.Pos.X, r.X, r.Right()-b.W)
	b.Pos.Y = core.ClampF(b.Pos.Y, r.Y, r.Bottom()-b.H)
}

// Integrate applies one frame of velocity to every live, unclamped body.
func (s *Store) Integrate() {
	for _, b := range s.Bodies() {
		if b.Clamped || b.Dead {
			continue
		}
		b.Pos = b.Pos.Add(b.Vel)
	}
}

// Compact drops dead dynamic bodies, preserving order.
func (s *Store) Compact() {
	s.Obstacles = compact(s.Obstacles)
	s.Projectiles = compact(s.Projectiles)
	s.Bricks = compact(s.Bricks)
}

func compact(bodies []*Body) []*Body {
	n := 0
	for _, b := range bodies {
		if !b.Dead {
			bodies[n] = b
			n++
		}
	}
	for i := n; i < len(bodies); i++ {
		bodies[i] = nil
	}
	return bodies[:n]
}
