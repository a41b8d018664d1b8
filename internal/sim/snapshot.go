package sim

// Snapshot is a read-only copy of a session for renderers.
type Snapshot struct {
	Variant       string
	Phase         Phase
	Frame         int
	Score         int
	OpponentScore int
	Width, Height float64
	Last          Events

	Player, Opponent, Ball *Body
	Obstacles              []Body
	Projectiles            []Body
	Bricks                 []Body
}

// GameOver reports whether the run has ended.
func (s Snapshot) GameOver() bool {
	return s.Phase == PhaseGameOver
}

// PlayerWon reports whether the player finished ahead of the opponent.
func (s Snapshot) PlayerWon() bool {
	return s.Score > s.OpponentScore
}

// Bodies returns every body in render order.
func (s Snapshot) Bodies() []Body {
	out := make([]Body, 0, 3+len(s.Obstacles)+len(s.Projectiles)+len(s.Bricks))
	out = append(out, s.Bricks...)
	out = append(out, s.Obstacles...)
	out = append(out, s.Projectiles...)
	for _, b := range []*Body{s.Opponent, s.Player, s.Ball} {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

func copyBody(b *Body) *Body {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func copyBodies(bodies []*Body) []Body {
	out := make([]Body, 0, len(bodies))
	for _, b := range bodies {
		if !b.Dead {
			out = append(out, *b)
		}
	}
	return out
}
