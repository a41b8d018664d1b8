// Package shooter implements a vertical shooter: the player ship moves in
// both axes, fires upward and must avoid falling enemies.
package shooter

import (
	"math"
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// ID is the registry identifier.
const ID = "shooter"

func init() {
	registry.Register(ID, func(opts registry.Options) (sim.Rules, error) {
		cfg, err := config.LoadShooter(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.Preset != "" {
			config.ApplyShooterPreset(&cfg, opts.Preset)
		}
		return NewWithConfig(cfg), nil
	})
}

// Game implements sim.Rules for the shooter.
type Game struct {
	cfg        config.ShooterConfig
	difficulty *config.DifficultyManager
	cooldown   sim.Cooldown
	spawner    sim.Spawner
}

// New creates a shooter with the default configuration.
func New() *Game {
	return NewWithConfig(config.DefaultShooterConfig())
}

// NewWithConfig creates a shooter with the given configuration.
func NewWithConfig(cfg config.ShooterConfig) *Game {
	return &Game{
		cfg:        cfg,
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		cooldown:   sim.Cooldown{Period: cfg.Projectiles.Cooldown},
	}
}

// ID returns the unique identifier for this variant.
func (g *Game) ID() string { return ID }

// Title returns the display name for this variant.
func (g *Game) Title() string { return "Tilt Shooter" }

// Size returns the playfield size.
func (g *Game) Size() (w, h float64) {
	return g.cfg.Playfield.Width, g.cfg.Playfield.Height
}

// Scoring returns kill points; the run ends only when the player is hit.
func (g *Game) Scoring() sim.Scoring {
	return sim.Scoring{KillPoints: g.cfg.Scoring.KillPoints}
}

// Setup places the ship at the bottom centre.
func (g *Game) Setup(store *sim.Store) {
	g.cooldown.Reset()
	g.spawner.Reset()

	size := g.cfg.Player.Size
	store.Player = &sim.Body{
		Kind:    sim.KindPlayer,
		Pos:     core.V(store.Bounds.W/2-size/2, store.Bounds.H-g.cfg.Player.BottomOffset),
		Radius:  size,
		W:       size,
		H:       size,
		Speed:   g.cfg.Player.Speed,
		Clamped: true,
	}
}

// Advance moves the ship, integrates enemies and shots, culls whatever left
// the playfield, spawns enemies and fires.
func (g *Game) Advance(store *sim.Store, ctrl core.ControlSignal, now time.Time) {
	sim.Steer(store.Player, ctrl, g.cfg.Player.GyroSensitivity, true)
	store.ClampBodies()
	store.Integrate()
	cull(store)

	every := g.difficulty.Cadence(g.cfg.Obstacles.SpawnEvery, 0, store.Frame)
	if g.spawner.Tick(every) {
		g.spawnObstacle(store)
	}

	if ctrl.Action && g.cooldown.TryFire(now) {
		g.fire(store)
	}
}

// Resolve runs the collision pass.
func (g *Game) Resolve(store *sim.Store) sim.Events {
	return collide(store)
}

func (g *Game) spawnObstacle(store *sim.Store) {
	o := g.cfg.Obstacles
	speed := g.difficulty.Speed(sim.Jitter(store, o.BaseSpeed, o.SpeedJitter), 0, store.Frame)
	store.Obstacles = append(store.Obstacles, &sim.Body{
		Kind:   sim.KindObstacle,
		Pos:    core.V(store.Rng.Float64()*(store.Bounds.W-o.SpawnMargin), -o.SpawnMargin),
		Vel:    core.V(0, speed),
		Radius: o.Size,
		W:      o.Size,
		H:      o.Size,
		Speed:  speed,
	})
}

// fire launches a shot from the top centre of the ship.
func (g *Game) fire(store *sim.Store) {
	p := store.Player
	pr := g.cfg.Projectiles
	store.Projectiles = append(store.Projectiles, &sim.Body{
		Kind:   sim.KindProjectile,
		Pos:    core.V(p.CenterX()-math.Ceil(pr.Size/2), p.Pos.Y),
		Vel:    core.V(0, -pr.Speed),
		Radius: pr.Size,
		W:      pr.Size,
		H:      pr.Size,
		Speed:  pr.Speed,
	})
}
