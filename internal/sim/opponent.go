package sim

import "github.com/vovakirdan/tilt-arcade/internal/core"

// Tracker parameterizes the opponent heuristic.
type Tracker struct {
	Speed     float64 // pursuit speed per frame
	DeadZone  float64 // hold still when the ball is this close to centre
	Tolerance float64 // hold still when this close to the home position
}

// DefaultTracker returns the stock opponent.
func DefaultTracker() Tracker {
	return Tracker{Speed: 3.5, DeadZone: 10, Tolerance: 2}
}

// TrackOpponent moves a top paddle for one frame. While the ball travels up
// toward it the paddle chases the ball's x; otherwise it drifts back to the
// middle at half speed. The paddle is always kept inside bounds.
func TrackOpponent(paddle, ball *Body, bounds core.Rect, t Tracker) {
	if paddle == nil || ball == nil {
		return
	}

	if ball.Vel.Y < 0 {
		centre := paddle.CenterX()
		switch {
		case centre < ball.Pos.X-t.DeadZone:
			paddle.Pos.X += t.Speed
		case centre > ball.Pos.X+t.DeadZone:
			paddle.Pos.X -= t.Speed
		}
	} else {
		home := bounds.CenterX() - paddle.W/2
		switch {
		case paddle.Pos.X < home-t.Tolerance:
			paddle.Pos.X += t.Speed / 2
		case paddle.Pos.X > home+t.Tolerance:
			paddle.Pos.X -= t.Speed / 2
		}
	}

	ClampInto(paddle, bounds)
}
