package shooter

import (
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// cull marks enemies below the playfield and shots outside it as dead.
func cull(store *sim.Store) {
	b := store.Bounds
	for _, o := range store.Obstacles {
		if o.Pos.Y > b.Bottom() {
			o.Dead = true
		}
	}
	for _, p := range store.Projectiles {
		if p.Pos.Y < b.Y || p.Pos.X < b.X || p.Pos.X > b.Right() {
			p.Dead = true
		}
	}
}

// collide resolves shots against enemies, then enemies against the ship.
// Enemies are visited in order and each takes the first live shot that
// overlaps it; both die and neither takes part in the rest of the pass.
func collide(store *sim.Store) sim.Events {
	var ev sim.Events

	for _, o := range store.Obstacles {
		if o.Dead {
			continue
		}
		for _, p := range store.Projectiles {
			if p.Dead {
				continue
			}
			if core.CircleCircle(o.Circle(), p.Circle()) {
				o.Dead = true
				p.Dead = true
				ev.Kills++
				break
			}
		}
	}

	player := store.Player
	if player.Live() {
		for _, o := range store.Obstacles {
			if o.Dead {
				continue
			}
			if core.CircleCircle(player.Circle(), o.Circle()) {
				ev.PlayerHit = true
				break
			}
		}
	}

	return ev
}
