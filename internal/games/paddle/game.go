// Package paddle implements a vertical paddle-ball game. The player defends
// the bottom edge against a computer paddle at the top.
package paddle

import (
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// ID is the registry identifier.
const ID = "paddle"

func init() {
	registry.Register(ID, func(opts registry.Options) (sim.Rules, error) {
		cfg, err := config.LoadPaddle(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.Preset != "" {
			config.ApplyPaddlePreset(&cfg, opts.Preset)
		}
		return NewWithConfig(cfg), nil
	})
}

// Game implements sim.Rules for the paddle game.
type Game struct {
	cfg     config.PaddleConfig
	tracker sim.Tracker
}

// New creates a paddle game with the default configuration.
func New() *Game {
	return NewWithConfig(config.DefaultPaddleConfig())
}

// NewWithConfig creates a paddle game with the given configuration.
func NewWithConfig(cfg config.PaddleConfig) *Game {
	return &Game{
		cfg: cfg,
		tracker: sim.Tracker{
			Speed:     cfg.Opponent.Speed,
			DeadZone:  cfg.Opponent.DeadZone,
			Tolerance: cfg.Opponent.Tolerance,
		},
	}
}

// ID returns the unique identifier for this variant.
func (g *Game) ID() string { return ID }

// Title returns the display name for this variant.
func (g *Game) Title() string { return "Tilt Paddle" }

// Size returns the playfield size.
func (g *Game) Size() (w, h float64) {
	return g.cfg.Playfield.Width, g.cfg.Playfield.Height
}

// Scoring ends the run when either side reaches the win score.
func (g *Game) Scoring() sim.Scoring {
	return sim.Scoring{WinScore: g.cfg.Gameplay.WinScore}
}

// TargetRange bounds pointer targets to valid paddle centres.
func (g *Game) TargetRange(store *sim.Store) (min, max float64) {
	half := g.cfg.Paddles.Width / 2
	return store.Bounds.X + half, store.Bounds.Right() - half
}

// Setup centres both paddles and the ball. The opening serve always goes
// up toward the opponent.
func (g *Game) Setup(store *sim.Store) {
	p := g.cfg.Paddles
	b := store.Bounds
	x := b.CenterX() - p.Width/2

	store.Player = &sim.Body{
		Kind:    sim.KindPaddle,
		Pos:     core.V(x, b.Bottom()-p.BottomOffset),
		W:       p.Width,
		H:       p.Height,
		Speed:   p.Speed,
		Clamped: true,
	}
	store.Opponent = &sim.Body{
		Kind:    sim.KindPaddle,
		Pos:     core.V(x, b.Y+p.TopOffset),
		W:       p.Width,
		H:       p.Height,
		Speed:   g.cfg.Opponent.Speed,
		Clamped: true,
	}
	store.Ball = &sim.Body{
		Kind:   sim.KindBall,
		Pos:    core.V(b.CenterX(), b.CenterY()),
		Vel:    core.V(g.spreadX(store), -g.cfg.Ball.ServeSpeed),
		Radius: g.cfg.Ball.Radius,
	}
}

// Advance moves the player paddle, integrates the ball and runs the
// opponent. While the pointer is down keyboard and tilt are ignored.
func (g *Game) Advance(store *sim.Store, ctrl core.ControlSignal, _ time.Time) {
	sim.PlacePaddle(store.Player, ctrl, g.cfg.Paddles.GyroSensitivity)
	store.ClampBodies()
	store.Integrate()
	sim.TrackOpponent(store.Opponent, store.Ball, store.Bounds, g.tracker)
}

// Resolve bounces the ball and scores points.
func (g *Game) Resolve(store *sim.Store) sim.Events {
	return g.collide(store)
}

func (g *Game) spreadX(store *sim.Store) float64 {
	return (store.Rng.Float64() - 0.5) * g.cfg.Ball.Spread
}

// serve re-centres the ball with a fresh random velocity.
func (g *Game) serve(store *sim.Store) {
	ball := store.Ball
	b := store.Bounds
	ball.Pos = core.V(b.CenterX(), b.CenterY())
	vx := g.spreadX(store)
	vy := g.cfg.Ball.ServeSpeed
	if store.Rng.Float64() <= 0.5 {
		vy = -vy
	}
	ball.Vel = core.V(vx, vy)
}
