package brick

import (
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

var epoch = time.Unix(0, 0)

func frameAt(i int) time.Time {
	return epoch.Add(time.Duration(i) * 16 * time.Millisecond)
}

type fixedSource core.ControlSignal

func (s fixedSource) Sample() core.ControlSignal { return core.ControlSignal(s) }

func TestSetupLayout(t *testing.T) {
	s := sim.NewSession(New(), fixedSource{}, 1)
	s.Start()
	snap := s.Snapshot()

	if snap.Player.Pos != core.V(100, 450) || snap.Player.W != 80 || snap.Player.H != 20 {
		t.Errorf("paddle %+v, expected 80x20 at (100, 450)", *snap.Player)
	}
	if snap.Ball.Pos != core.V(120, 400) || snap.Ball.Vel != core.V(3, -3) || snap.Ball.Radius != 10 {
		t.Errorf("ball %+v, expected r10 at (120, 400) moving (3, -3)", *snap.Ball)
	}
	if len(snap.Bricks) != 40 {
		t.Fatalf("%d bricks, expected 40", len(snap.Bricks))
	}

	tests := []struct {
		index int
		want  core.Vec2
	}{
		{index: 0, want: core.V(20, 50)},
		{index: 7, want: core.V(440, 50)},
		{index: 8, want: core.V(20, 80)},
		{index: 39, want: core.V(440, 170)},
	}
	for _, tt := range tests {
		b := snap.Bricks[tt.index]
		if b.Pos != tt.want || b.W != 50 || b.H != 20 {
			t.Errorf("brick %d at %v (%vx%v), expected 50x20 at %v", tt.index, b.Pos, b.W, b.H, tt.want)
		}
	}
}

func TestWallReflection(t *testing.T) {
	tests := []struct {
		name    string
		pos     core.Vec2
		vel     core.Vec2
		wantVel core.Vec2
	}{
		{name: "left", pos: core.V(5, 200), vel: core.V(-3, 3), wantVel: core.V(3, 3)},
		{name: "right", pos: core.V(795, 200), vel: core.V(3, 3), wantVel: core.V(-3, 3)},
		{name: "top", pos: core.V(300, 5), vel: core.V(3, -3), wantVel: core.V(3, 3)},
		{name: "bottom is open", pos: core.V(300, 495), vel: core.V(3, 3), wantVel: core.V(3, 3)},
		{name: "already leaving", pos: core.V(5, 200), vel: core.V(3, 3), wantVel: core.V(3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			store := sim.NewStore(core.NewRect(0, 0, 800, 500), 1)
			g.Setup(store)
			store.Ball.Pos = tt.pos
			store.Ball.Vel = tt.vel

			if ev := g.Resolve(store); !ev.Empty() {
				t.Errorf("unexpected events %+v", ev)
			}
			if store.Ball.Vel != tt.wantVel {
				t.Errorf("velocity %v, expected %v", store.Ball.Vel, tt.wantVel)
			}
		})
	}
}

func TestPaddleControl(t *testing.T) {
	tests := []struct {
		name  string
		ctrl  core.ControlSignal
		wantX float64
	}{
		{name: "keyboard", ctrl: core.ControlSignal{MoveX: 1}, wantX: 105},
		{name: "tilt", ctrl: core.ControlSignal{TiltX: -0.5}, wantX: 97.5},
		{name: "vertical ignored", ctrl: core.ControlSignal{MoveY: 1}, wantX: 100},
		{name: "pointer", ctrl: core.ControlSignal{HasTarget: true, TargetX: 400}, wantX: 360},
		{name: "held pointer holds still", ctrl: core.ControlSignal{PointerHeld: true, TiltX: -0.5, MoveX: 1}, wantX: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sim.NewSession(New(), fixedSource(tt.ctrl), 1)
			s.Start()
			s.Step(frameAt(0))

			p := s.Snapshot().Player
			if p.Pos.X != tt.wantX || p.Pos.Y != 450 {
				t.Errorf("paddle at %v, expected (%v, 450)", p.Pos, tt.wantX)
			}
		})
	}
}

func TestRunNeverEnds(t *testing.T) {
	s := sim.NewSession(New(), fixedSource{MoveX: -1}, 1)
	s.Start()

	for i := 0; i < 1000; i++ {
		s.Step(frameAt(i))
		snap := s.Snapshot()
		if snap.Player.Pos.X < 0 {
			t.Fatalf("paddle left the playfield at %v", snap.Player.Pos)
		}
		if len(snap.Bricks) != 40 {
			t.Fatalf("%d bricks at frame %d, expected all 40", len(snap.Bricks), i)
		}
	}
	if s.Phase() != sim.PhaseRunning || s.Snapshot().Score != 0 {
		t.Errorf("phase %v score %d, expected a running game with no score", s.Phase(), s.Snapshot().Score)
	}
}

func TestRestartMatchesStart(t *testing.T) {
	s := sim.NewSession(New(), fixedSource{MoveX: 1}, 8)
	s.Start()
	initial := s.Snapshot()

	for i := 0; i < 120; i++ {
		s.Step(frameAt(i))
	}
	s.Restart()

	if !reflect.DeepEqual(initial, s.Snapshot()) {
		t.Error("restart did not rebuild the initial state")
	}
}
