package sim

import (
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/core"
)

func TestIntegrateSkipsClampedAndDead(t *testing.T) {
	s := NewStore(core.NewRect(0, 0, 100, 100), 1)
	s.Player = &Body{Pos: core.V(10, 10), Vel: core.V(5, 5), Clamped: true}
	s.Ball = &Body{Pos: core.V(50, 50), Vel: core.V(1, -2)}
	dead := &Body{Pos: core.V(0, 0), Vel: core.V(1, 1), Dead: true}
	s.Obstacles = []*Body{dead}

	s.Integrate()

	if s.Player.Pos != core.V(10, 10) {
		t.Errorf("clamped body moved to %v", s.Player.Pos)
	}
	if s.Ball.Pos != core.V(51, 48) {
		t.Errorf("ball at %v, expected (51, 48)", s.Ball.Pos)
	}
	if dead.Pos != core.V(0, 0) {
		t.Errorf("dead body moved to %v", dead.Pos)
	}
}

func TestClampBodies(t *testing.T) {
	tests := []struct {
		name     string
		pos      core.Vec2
		expected core.Vec2
	}{
		{"inside", core.V(10, 10), core.V(10, 10)},
		{"left", core.V(-5, 10), core.V(0, 10)},
		{"right", core.V(95, 10), core.V(80, 10)},
		{"top", core.V(10, -1), core.V(10, 0)},
		{"bottom", core.V(10, 200), core.V(10, 90)},
		{"corner", core.V(500, 500), core.V(80, 90)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(core.NewRect(0, 0, 100, 100), 1)
			s.Player = &Body{Pos: tc.pos, W: 20, H: 10, Clamped: true}
			s.ClampBodies()
			if s.Player.Pos != tc.expected {
				t.Errorf("clamped to %v, expected %v", s.Player.Pos, tc.expected)
			}
		})
	}
}

func TestCompactKeepsOrder(t *testing.T) {
	s := NewStore(core.NewRect(0, 0, 100, 100), 1)
	a := &Body{Pos: core.V(1, 0)}
	b := &Body{Pos: core.V(2, 0), Dead: true}
	c := &Body{Pos: core.V(3, 0)}
	d := &Body{Pos: core.V(4, 0), Dead: true}
	s.Obstacles = []*Body{a, b, c, d}
	s.Projectiles = []*Body{{Dead: true}}

	s.Compact()

	if len(s.Obstacles) != 2 || s.Obstacles[0] != a || s.Obstacles[1] != c {
		t.Errorf("Compact() left %v", s.Obstacles)
	}
	if len(s.Projectiles) != 0 {
		t.Errorf("expected no projectiles, got %d", len(s.Projectiles))
	}
}

func TestSpawnerTick(t *testing.T) {
	var sp Spawner
	fired := 0
	for frame := 1; frame <= 180; frame++ {
		if sp.Tick(60) {
			fired++
			if frame%60 != 0 {
				t.Errorf("fired on frame %d", frame)
			}
		}
	}
	if fired != 3 {
		t.Errorf("fired %d times in 180 frames, expected 3", fired)
	}

	var off Spawner
	for frame := 1; frame <= 120; frame++ {
		if off.Tick(0) {
			t.Fatal("a zero cadence should never fire")
		}
	}
}

func TestSpawnerGapFollowsCadence(t *testing.T) {
	tests := []struct {
		name     string
		cadences []int // cadence in force from one firing onward
		want     []int // frames of each firing
	}{
		{"steady", []int{10, 10, 10}, []int{10, 20, 30}},
		{"shrinking", []int{10, 7, 4}, []int{10, 17, 21}},
		{"growing", []int{5, 8}, []int{5, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sp Spawner
			var got []int
			for frame := 1; len(got) < len(tt.cadences) && frame < 1000; frame++ {
				if sp.Tick(tt.cadences[len(got)]) {
					got = append(got, frame)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fired on %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestSpawnerReset(t *testing.T) {
	var sp Spawner
	for i := 0; i < 5; i++ {
		sp.Tick(10)
	}
	sp.Reset()
	for frame := 1; frame < 10; frame++ {
		if sp.Tick(10) {
			t.Fatalf("fired on frame %d after Reset", frame)
		}
	}
	if !sp.Tick(10) {
		t.Error("should fire ten frames after Reset")
	}
}

func TestCooldownUsesWallClock(t *testing.T) {
	c := Cooldown{Period: 150 * time.Millisecond}
	start := time.Unix(100, 0)

	if !c.TryFire(start) {
		t.Fatal("first attempt should fire")
	}
	if c.TryFire(start.Add(100 * time.Millisecond)) {
		t.Error("fired inside the cooldown")
	}
	if !c.TryFire(start.Add(150 * time.Millisecond)) {
		t.Error("should fire once the period elapsed")
	}

	c.Reset()
	if !c.Ready(start) {
		t.Error("reset cooldown should be ready")
	}
}

func TestDisplacement(t *testing.T) {
	tests := []struct {
		move, tilt, sens, speed, expected float64
	}{
		{1, 0, 1.2, 5, 5},
		{0, 1, 1.2, 5, 6},
		{-1, 0.5, 1.2, 5, -2},
		{0, -1, 1, 8, -8},
		{0, 0, 1.2, 5, 0},
	}
	for _, tc := range tests {
		got := Displacement(tc.move, tc.tilt, tc.sens, tc.speed)
		if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Displacement(%v, %v, %v, %v) = %v, expected %v", tc.move, tc.tilt, tc.sens, tc.speed, got, tc.expected)
		}
	}
}

func TestTrackOpponent(t *testing.T) {
	bounds := core.NewRect(0, 0, 360, 640)

	tests := []struct {
		name     string
		paddleX  float64
		ball     Body
		expected float64
	}{
		{"chase right", 100, Body{Pos: core.V(250, 300), Vel: core.V(0, -4)}, 103.5},
		{"chase left", 100, Body{Pos: core.V(50, 300), Vel: core.V(0, -4)}, 96.5},
		{"dead zone", 100, Body{Pos: core.V(155, 300), Vel: core.V(0, -4)}, 100},
		{"return home", 0, Body{Pos: core.V(10, 300), Vel: core.V(0, 4)}, 1.75},
		{"home tolerance", 131, Body{Pos: core.V(10, 300), Vel: core.V(0, 4)}, 131},
		{"clamped", 259, Body{Pos: core.V(360, 300), Vel: core.V(0, -4)}, 260},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			paddle := &Body{Pos: core.V(tc.paddleX, 20), W: 100, H: 12}
			ball := tc.ball
			TrackOpponent(paddle, &ball, bounds, DefaultTracker())
			if paddle.Pos.X != tc.expected {
				t.Errorf("paddle x = %v, expected %v", paddle.Pos.X, tc.expected)
			}
		})
	}
}

func TestTrackOpponentIsDeterministic(t *testing.T) {
	bounds := core.NewRect(0, 0, 360, 640)
	run := func() float64 {
		paddle := &Body{Pos: core.V(130, 20), W: 100, H: 12}
		ball := &Body{Pos: core.V(30, 300), Vel: core.V(2, -4)}
		for i := 0; i < 100; i++ {
			ball.Pos = ball.Pos.Add(ball.Vel)
			if ball.Pos.X < 0 || ball.Pos.X > 360 {
				ball.Vel.X = -ball.Vel.X
			}
			TrackOpponent(paddle, ball, bounds, DefaultTracker())
		}
		return paddle.Pos.X
	}

	if a, b := run(), run(); a != b {
		t.Errorf("two identical runs ended at %v and %v", a, b)
	}
}

func TestReflect(t *testing.T) {
	bounds := core.NewRect(0, 0, 100, 100)

	tests := []struct {
		name     string
		pos, vel core.Vec2
		walls    Walls
		hit      Walls
		expected core.Vec2
	}{
		{"left", core.V(2, 50), core.V(-3, 1), WallSides, WallLeft, core.V(3, 1)},
		{"right", core.V(98, 50), core.V(3, 1), WallSides, WallRight, core.V(-3, 1)},
		{"already leaving", core.V(2, 50), core.V(3, 1), WallSides, 0, core.V(3, 1)},
		{"top", core.V(50, 1), core.V(1, -2), WallSides | WallTop, WallTop, core.V(1, 2)},
		{"top not selected", core.V(50, 1), core.V(1, -2), WallSides, 0, core.V(1, -2)},
		{"corner", core.V(99, 99), core.V(1, 1), WallSides | WallBottom, WallRight | WallBottom, core.V(-1, -1)},
		{"inside", core.V(50, 50), core.V(5, 5), WallSides | WallTop | WallBottom, 0, core.V(5, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &Body{Pos: tc.pos, Vel: tc.vel, Radius: 5}
			hit := Reflect(b, bounds, tc.walls)
			if hit != tc.hit {
				t.Errorf("hit = %b, expected %b", hit, tc.hit)
			}
			if b.Vel != tc.expected {
				t.Errorf("velocity = %v, expected %v", b.Vel, tc.expected)
			}
		})
	}
}
