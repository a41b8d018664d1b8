package shooter

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

var epoch = time.Unix(0, 0)

// frameAt returns the wall-clock time of frame i at 60fps.
func frameAt(i int) time.Time {
	return epoch.Add(time.Duration(i) * 16 * time.Millisecond)
}

// scriptSource yields one control signal per frame from a function.
type scriptSource struct {
	frame int
	fn    func(frame int) core.ControlSignal
}

func (s *scriptSource) Sample() core.ControlSignal {
	s.frame++
	return s.fn(s.frame)
}

func idle() *scriptSource {
	return &scriptSource{fn: func(int) core.ControlSignal { return core.ControlSignal{} }}
}

// staged wraps the game and adds bodies after Setup.
type staged struct {
	*Game
	stage func(store *sim.Store)
}

func (s staged) Setup(store *sim.Store) {
	s.Game.Setup(store)
	s.stage(store)
}

func fixedConfig() config.ShooterConfig {
	cfg := config.DefaultShooterConfig()
	cfg.Difficulty.Enabled = false
	return cfg
}

func TestPlayerHitEndsRun(t *testing.T) {
	rules := staged{Game: New(), stage: func(store *sim.Store) {
		store.Player.Pos = core.V(100, 100)
		store.Obstacles = append(store.Obstacles, &sim.Body{
			Kind: sim.KindObstacle, Pos: core.V(105, 105), Radius: 20, W: 20, H: 20,
		})
	}}
	s := sim.NewSession(rules, idle(), 1)
	s.Start()

	ev := s.Step(frameAt(0))

	if !ev.PlayerHit {
		t.Fatal("expected the player to be hit")
	}
	if s.Phase() != sim.PhaseGameOver {
		t.Errorf("Phase() = %v, expected game over", s.Phase())
	}
}

func TestOneKillPerProjectile(t *testing.T) {
	store := sim.NewStore(core.NewRect(0, 0, 400, 640), 1)
	store.Player = &sim.Body{Kind: sim.KindPlayer, Pos: core.V(0, 600), Radius: 1}
	first := &sim.Body{Kind: sim.KindObstacle, Pos: core.V(200, 200), Radius: 20}
	second := &sim.Body{Kind: sim.KindObstacle, Pos: core.V(202, 200), Radius: 20}
	shot := &sim.Body{Kind: sim.KindProjectile, Pos: core.V(201, 205), Radius: 5}
	store.Obstacles = []*sim.Body{first, second}
	store.Projectiles = []*sim.Body{shot}

	ev := collide(store)

	if ev.Kills != 1 {
		t.Errorf("Kills = %d, expected 1", ev.Kills)
	}
	if !first.Dead || second.Dead {
		t.Error("the first obstacle in order should take the shot, the second should survive")
	}
	if !shot.Dead {
		t.Error("shot should be consumed")
	}
}

func TestNoOverlapSurvivesCollisionPass(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		store := sim.NewStore(core.NewRect(0, 0, 400, 640), 1)
		store.Player = &sim.Body{Kind: sim.KindPlayer, Pos: core.V(-1000, -1000), Radius: 1}
		for i := 0; i < 20; i++ {
			store.Obstacles = append(store.Obstacles, &sim.Body{
				Kind: sim.KindObstacle, Pos: core.V(rng.Float64()*200, rng.Float64()*200), Radius: 20,
			})
			store.Projectiles = append(store.Projectiles, &sim.Body{
				Kind: sim.KindProjectile, Pos: core.V(rng.Float64()*200, rng.Float64()*200), Radius: 5,
			})
		}

		ev := collide(store)
		dead := 20 - live(store.Obstacles)
		if ev.Kills != dead || 20-live(store.Projectiles) != dead {
			t.Fatalf("round %d: %d kills but %d obstacles and %d shots dead", round, ev.Kills, dead, 20-live(store.Projectiles))
		}

		for _, o := range store.Obstacles {
			for _, p := range store.Projectiles {
				if o.Live() && p.Live() && core.CircleCircle(o.Circle(), p.Circle()) {
					t.Fatalf("round %d: live overlapping pair at %v and %v", round, o.Pos, p.Pos)
				}
			}
		}
	}
}

func TestSpawnCadence(t *testing.T) {
	s := sim.NewSession(NewWithConfig(fixedConfig()), idle(), 3)
	s.Start()

	for i := 0; i < 59; i++ {
		s.Step(frameAt(i))
	}
	if n := len(s.Snapshot().Obstacles); n != 0 {
		t.Fatalf("%d obstacles before frame 60, expected none", n)
	}

	s.Step(frameAt(59))
	obs := s.Snapshot().Obstacles
	if len(obs) != 1 {
		t.Fatalf("%d obstacles after frame 60, expected 1", len(obs))
	}
	o := obs[0]
	if o.Pos.X < 0 || o.Pos.X >= 360 || o.Pos.Y != -40 {
		t.Errorf("spawned at %v, expected x in [0, 360) and y = -40", o.Pos)
	}
	if o.Vel.Y < 2 || o.Vel.Y >= 4 {
		t.Errorf("speed %v outside [2, 4)", o.Vel.Y)
	}
}

func TestSpawnSpacingUnderProgression(t *testing.T) {
	g := New()
	base := g.cfg.Obstacles.SpawnEvery
	store := sim.NewStore(core.NewRect(0, 0, 360, 640), 5)
	g.Setup(store)

	var gaps []int
	last := 0
	for frame := 1; frame <= 7400; frame++ {
		store.Frame = frame
		before := len(store.Obstacles)
		g.Advance(store, core.ControlSignal{}, frameAt(frame))
		if len(store.Obstacles) == before {
			continue
		}

		gap := frame - last
		cadence := g.difficulty.Cadence(base, 0, frame)
		if gap < cadence || gap > cadence+1 {
			t.Fatalf("spawn on frame %d after a gap of %d, cadence is %d", frame, gap, cadence)
		}
		gaps = append(gaps, gap)
		last = frame
	}

	if len(gaps) < 2 {
		t.Fatalf("only %d spawns", len(gaps))
	}
	if gaps[0] != base {
		t.Errorf("first gap = %d, expected %d", gaps[0], base)
	}
	if got := gaps[len(gaps)-1]; got != base-30 {
		t.Errorf("gap at full difficulty = %d, expected %d", got, base-30)
	}
}

func TestFireCooldownUsesFrameTime(t *testing.T) {
	src := &scriptSource{fn: func(int) core.ControlSignal { return core.ControlSignal{Action: true} }}
	s := sim.NewSession(NewWithConfig(fixedConfig()), src, 1)
	s.Start()

	for i := 0; i < 60; i++ {
		s.Step(frameAt(i))
	}

	// Shots at 0, 160, 320, 480, 640 and 800ms.
	snap := s.Snapshot()
	if n := len(snap.Projectiles); n != 6 {
		t.Fatalf("%d projectiles, expected 6", n)
	}
	p := snap.Player
	last := snap.Projectiles[len(snap.Projectiles)-1]
	if last.Pos.X != p.CenterX()-3 {
		t.Errorf("projectile x = %v, expected ship centre - 3 = %v", last.Pos.X, p.CenterX()-3)
	}
	if last.Vel != core.V(0, -8) {
		t.Errorf("projectile velocity = %v, expected (0, -8)", last.Vel)
	}
}

func TestProjectilesCulledAtTop(t *testing.T) {
	src := &scriptSource{fn: func(f int) core.ControlSignal { return core.ControlSignal{Action: f == 1} }}
	s := sim.NewSession(NewWithConfig(fixedConfig()), src, 1)
	s.Start()

	// Player top is 560; the shot needs 71 frames to pass y = 0.
	for i := 0; i < 72; i++ {
		s.Step(frameAt(i))
	}
	if n := len(s.Snapshot().Projectiles); n != 0 {
		t.Errorf("%d projectiles left after leaving the top, expected 0", n)
	}
}

func TestPlayerClampedForAllControls(t *testing.T) {
	values := []float64{-1, 0, 1}
	for _, mx := range values {
		for _, my := range values {
			for _, tilt := range values {
				ctrl := core.ControlSignal{MoveX: mx, MoveY: my, TiltX: tilt, TiltY: -tilt}
				src := &scriptSource{fn: func(int) core.ControlSignal { return ctrl }}
				s := sim.NewSession(NewWithConfig(fixedConfig()), src, 1)
				s.Start()

				for i := 0; i < 150 && s.Phase() == sim.PhaseRunning; i++ {
					s.Step(frameAt(i))
					p := s.Snapshot().Player
					if p.Pos.X < 0 || p.Pos.X+p.W > 400 || p.Pos.Y < 0 || p.Pos.Y+p.H > 640 {
						t.Fatalf("player at %v out of bounds with %+v", p.Pos, ctrl)
					}
				}
			}
		}
	}
}

func TestGyroAddsToKeyboard(t *testing.T) {
	src := &scriptSource{fn: func(int) core.ControlSignal { return core.ControlSignal{MoveX: 1, TiltX: 0.5} }}
	s := sim.NewSession(NewWithConfig(fixedConfig()), src, 1)
	s.Start()
	start := s.Snapshot().Player.Pos.X

	s.Step(frameAt(0))

	// 5 from the keyboard plus 0.5 * 5 * 1.2 from tilt.
	if got := s.Snapshot().Player.Pos.X - start; math.Abs(got-8) > 1e-9 {
		t.Errorf("moved %v, expected 8", got)
	}
}

func TestGameDeterminism(t *testing.T) {
	script := func(f int) core.ControlSignal {
		return core.ControlSignal{
			MoveX:  []float64{-1, 0, 1}[f/20%3],
			TiltY:  0.3,
			Action: f%7 == 0,
		}
	}
	run := func() sim.Snapshot {
		s := sim.NewSession(New(), &scriptSource{fn: script}, 12345)
		s.Start()
		for i := 0; i < 600 && s.Phase() == sim.PhaseRunning; i++ {
			s.Step(frameAt(i))
		}
		return s.Snapshot()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("determinism failed: runs differ\n%+v\n%+v", a, b)
	}
}

func TestRestartMatchesStart(t *testing.T) {
	src := &scriptSource{fn: func(f int) core.ControlSignal { return core.ControlSignal{MoveY: -1, Action: true} }}
	s := sim.NewSession(New(), src, 99)
	s.Start()
	initial := s.Snapshot()

	for i := 0; i < 300; i++ {
		s.Step(frameAt(i))
	}
	s.Restart()

	if !reflect.DeepEqual(initial, s.Snapshot()) {
		t.Error("restart did not rebuild the initial state")
	}

	// The cooldown is part of the run and must be reset too.
	s.Step(frameAt(300))
	if n := len(s.Snapshot().Projectiles); n != 1 {
		t.Errorf("%d projectiles on the first frame after restart, expected 1", n)
	}
}

func TestScoreMonotonic(t *testing.T) {
	src := &scriptSource{fn: func(f int) core.ControlSignal {
		return core.ControlSignal{MoveX: []float64{-1, 1}[f/40%2], Action: true}
	}}
	s := sim.NewSession(New(), src, 5)
	s.Start()

	prev := 0
	for i := 0; i < 2000 && s.Phase() == sim.PhaseRunning; i++ {
		s.Step(frameAt(i))
		score := s.Snapshot().Score
		if score < prev {
			t.Fatalf("score dropped from %d to %d", prev, score)
		}
		if score%10 != 0 {
			t.Fatalf("score %d is not a multiple of the kill points", score)
		}
		prev = score
	}
}

// live counts the bodies still alive.
func live(bodies []*sim.Body) int {
	n := 0
	for _, b := range bodies {
		if b.Live() {
			n++
		}
	}
	return n
}
