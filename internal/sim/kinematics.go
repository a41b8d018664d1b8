package sim

import (
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/core"
)

// Displacement combines the keyboard and motion channels of one axis into a
// per-frame displacement. The motion part is scaled by sensitivity.
func Displacement(move, tilt, sensitivity, speed float64) float64 {
	return (move + tilt*sensitivity) * speed
}

// Steer moves b by the control signal. X always follows MoveX/TiltX; Y
// follows MoveY/TiltY only when vertical is set.
func Steer(b *Body, ctrl core.ControlSignal, sensitivity float64, vertical bool) {
	b.Pos.X += Displacement(ctrl.MoveX, ctrl.TiltX, sensitivity, b.Speed)
	if vertical {
		b.Pos.Y += Displacement(ctrl.MoveY, ctrl.TiltY, sensitivity, b.Speed)
	}
}

// PlacePaddle moves a paddle for one frame. A pointer target sets its centre
// directly, and a pointer held still keeps it in place. Otherwise keyboard
// and tilt steer it horizontally.
func PlacePaddle(b *Body, ctrl core.ControlSignal, sensitivity float64) {
	switch {
	case ctrl.HasTarget:
		b.Pos.X = ctrl.TargetX - b.W/2
	case ctrl.PointerHeld:
	default:
		Steer(b, ctrl, sensitivity, false)
	}
}

// Spawner counts frames since its last firing and fires once the count
// reaches the cadence passed to Tick, which may change from frame to frame.
type Spawner struct {
	since int
}

// Tick counts one frame and reports whether a spawn is due at a cadence of
// every frames. With a fixed cadence the first spawn lands on frame every.
func (s *Spawner) Tick(every int) bool {
	if every <= 0 {
		return false
	}
	s.since++
	if s.since < every {
		return false
	}
	s.since = 0
	return true
}

// Reset starts counting from zero again.
func (s *Spawner) Reset() {
	s.since = 0
}

// Jitter returns base plus a uniform offset in [0, spread).
func Jitter(store *Store, base, spread float64) float64 {
	return base + store.Rng.Float64()*spread
}

// Cooldown gates an action on wall-clock time between attempts.
type Cooldown struct {
	Period time.Duration

	last  time.Time
	fired bool
}

// Ready reports whether the action may fire at now.
func (c *Cooldown) Ready(now time.Time) bool {
	return !c.fired || now.Sub(c.last) >= c.Period
}

// TryFire fires if ready and reports whether it did.
func (c *Cooldown) TryFire(now time.Time) bool {
	if !c.Ready(now) {
		return false
	}
	c.last = now
	c.fired = true
	return true
}

// Reset forgets the last firing.
func (c *Cooldown) Reset() {
	c.fired = false
	c.last = time.Time{}
}
