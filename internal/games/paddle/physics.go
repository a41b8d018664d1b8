package paddle

import (
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// collide bounces the ball off the side walls and both paddles, then
// scores a ball that left through the top or bottom.
func (g *Game) collide(store *sim.Store) sim.Events {
	var ev sim.Events
	ball := store.Ball
	b := store.Bounds

	sim.Reflect(ball, b, sim.WallSides)

	for _, paddle := range []*sim.Body{store.Player, store.Opponent} {
		if core.CircleRect(ball.Circle(), ball.Vel, paddle.Rect()) {
			deflect(ball, paddle, g.cfg.Gameplay.Deflection)
			break
		}
	}

	switch {
	case ball.Pos.Y+ball.Radius > b.Bottom():
		ev.OpponentPoints++
		g.serve(store)
	case ball.Pos.Y-ball.Radius < b.Y:
		ev.PlayerPoints++
		g.serve(store)
	}

	return ev
}

// deflect reverses the ball vertically and sets its horizontal speed from
// where it struck the paddle: zero at the centre, ±strength at the edges.
func deflect(ball, paddle *sim.Body, strength float64) {
	ball.Vel.Y = -ball.Vel.Y
	hit := (ball.Pos.X - paddle.CenterX()) / (paddle.W / 2)
	ball.Vel.X = hit * strength
}
