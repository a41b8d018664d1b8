package storage

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// Player feeds recorded control signals back into a session.
type Player struct {
	frames []FrameRecord
	next   int
}

// NewPlayer creates a player over frames in recorded order.
func NewPlayer(frames []FrameRecord) *Player {
	return &Player{frames: frames}
}

// Done reports whether every frame has been sampled.
func (p *Player) Done() bool { return p.next >= len(p.frames) }

// NextAt returns the wall-clock time of the next frame relative to base.
func (p *Player) NextAt(base time.Time) time.Time {
	if p.Done() {
		return base
	}
	return base.Add(p.frames[p.next].At)
}

// Sample implements sim.ControlSource. Past the end it returns an idle signal.
func (p *Player) Sample() core.ControlSignal {
	if p.Done() {
		return core.ControlSignal{}
	}
	c := p.frames[p.next].Control
	p.next++
	return c
}

// Rerun re-simulates a replay with the given rules and returns the final
// snapshot. The rules must be the variant the replay was recorded with.
func Rerun(rules sim.Rules, rep Replay, frames []FrameRecord) (sim.Snapshot, error) {
	if rules.ID() != rep.Variant {
		return sim.Snapshot{}, fmt.Errorf("storage: replay %s is %q, not %q", rep.ID, rep.Variant, rules.ID())
	}
	if w, h := rules.Size(); w != rep.Width || h != rep.Height {
		return sim.Snapshot{}, fmt.Errorf("storage: replay %s playfield %vx%v does not match %vx%v", rep.ID, rep.Width, rep.Height, w, h)
	}

	player := NewPlayer(frames)
	session := sim.NewSession(rules, player, rep.Seed)
	session.Start()

	base := time.Unix(0, 0)
	for !player.Done() && session.Phase() == sim.PhaseRunning {
		session.Step(player.NextAt(base))
	}
	return session.Snapshot(), nil
}
