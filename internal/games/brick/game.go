// Package brick implements a brick-wall game: a horizontal paddle under a
// grid of bricks with a free-bouncing ball. Bricks are never destroyed and
// the ball cannot be lost, so the run only ends on restart or quit.
package brick

import (
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// ID is the registry identifier.
const ID = "brick"

func init() {
	registry.Register(ID, func(opts registry.Options) (sim.Rules, error) {
		cfg, err := config.LoadBrick(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.Preset != "" {
			config.ApplyBrickPreset(&cfg, opts.Preset)
		}
		return NewWithConfig(cfg), nil
	})
}

// Game implements sim.Rules for the brick game.
type Game struct {
	cfg config.BrickConfig
}

// New creates a brick game with the default configuration.
func New() *Game {
	return NewWithConfig(config.DefaultBrickConfig())
}

// NewWithConfig creates a brick game with the given configuration.
func NewWithConfig(cfg config.BrickConfig) *Game {
	return &Game{cfg: cfg}
}

// ID returns the unique identifier for this variant.
func (g *Game) ID() string { return ID }

// Title returns the display name for this variant.
func (g *Game) Title() string { return "Tilt Bricks" }

// Size returns the playfield size.
func (g *Game) Size() (w, h float64) {
	return g.cfg.Playfield.Width, g.cfg.Playfield.Height
}

// Scoring is empty: nothing scores and nothing ends the run.
func (g *Game) Scoring() sim.Scoring { return sim.Scoring{} }

// TargetRange bounds pointer targets to valid paddle centres.
func (g *Game) TargetRange(store *sim.Store) (min, max float64) {
	half := g.cfg.Paddle.Width / 2
	return store.Bounds.X + half, store.Bounds.Right() - half
}

// Setup places the paddle, the ball and the brick grid.
func (g *Game) Setup(store *sim.Store) {
	p := g.cfg.Paddle
	store.Player = &sim.Body{
		Kind:    sim.KindPaddle,
		Pos:     core.V(p.X, p.Y),
		W:       p.Width,
		H:       p.Height,
		Speed:   p.Speed,
		Clamped: true,
	}

	b := g.cfg.Ball
	store.Ball = &sim.Body{
		Kind:   sim.KindBall,
		Pos:    core.V(b.X, b.Y),
		Vel:    core.V(b.VX, b.VY),
		Radius: b.Radius,
	}

	store.Bricks = layout(g.cfg.Bricks)
}

// layout builds the brick grid row by row.
func layout(grid config.BrickGrid) []*sim.Body {
	bricks := make([]*sim.Body, 0, grid.Rows*grid.Cols)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			bricks = append(bricks, &sim.Body{
				Kind:    sim.KindBrick,
				Pos:     core.V(float64(col)*grid.SpacingX+grid.OffsetX, float64(row)*grid.SpacingY+grid.OffsetY),
				W:       grid.Width,
				H:       grid.Height,
				Clamped: true,
			})
		}
	}
	return bricks
}

// Advance moves the paddle and integrates the ball. A pointer target places
// the paddle directly.
func (g *Game) Advance(store *sim.Store, ctrl core.ControlSignal, _ time.Time) {
	sim.PlacePaddle(store.Player, ctrl, g.cfg.Paddle.GyroSensitivity)
	store.ClampBodies()
	store.Integrate()
}

// Resolve bounces the ball off the side and top walls.
// TODO: ball vs paddle and bricks, and a bottom-edge miss.
func (g *Game) Resolve(store *sim.Store) sim.Events {
	sim.Reflect(store.Ball, store.Bounds, sim.WallSides|sim.WallTop)
	return sim.Events{}
}
