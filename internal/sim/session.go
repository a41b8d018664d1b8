package sim

import (
	"time"

	"github.com/vovakirdan/tilt-arcade/internal/core"
)

// Rules is the per-variant behaviour plugged into a Session.
// Rules contain pure logic: no terminal, no network, no storage.
type Rules interface {
	// ID returns a unique identifier (e.g. "shooter"). Used by the CLI and
	// the replay journal.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Size returns the playfield width and height.
	Size() (w, h float64)

	// Setup populates a fresh store and resets any per-run state held by the
	// rules. Called on Start and on every Restart.
	Setup(store *Store)

	// Advance applies one frame of control and kinematics: displacement,
	// clamping, integration, spawning and the opponent.
	Advance(store *Store, ctrl core.ControlSignal, now time.Time)

	// Resolve runs the collision pass and reports what happened.
	Resolve(store *Store) Events

	// Scoring returns how events become points and when the run ends.
	Scoring() Scoring
}

// TargetRanger is implemented by rules that accept an absolute pointer
// target. The range bounds the target before it reaches Advance.
type TargetRanger interface {
	TargetRange(store *Store) (min, max float64)
}

// Scoring converts events into score.
type Scoring struct {
	KillPoints int // points per kill
	WinScore   int // either side reaching this ends the run; 0 disables
}

// ControlSource yields the control signal for one frame.
type ControlSource interface {
	Sample() core.ControlSignal
}

// Frame is one stepped frame as seen by an Observer.
type Frame struct {
	Index   int
	At      time.Time
	Control core.ControlSignal
	Events  Events
}

// Observer receives every stepped frame, for example to journal inputs.
type Observer interface {
	ObserveFrame(f Frame)
}

// Phase is the session state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Session drives one variant: it owns the store and the scores and folds
// each frame's events into the phase.
type Session struct {
	rules    Rules
	source   ControlSource
	observer Observer
	seed     int64

	store         *Store
	score         int
	opponentScore int
	phase         Phase
	last          Events
}

// NewSession creates an idle session. Call Start before Step.
func NewSession(rules Rules, source ControlSource, seed int64) *Session {
	return &Session{
		rules:  rules,
		source: source,
		seed:   seed,
	}
}

// SetObserver installs an observer for stepped frames. Nil removes it.
func (s *Session) SetObserver(o Observer) {
	s.observer = o
}

// Rules returns the variant rules.
func (s *Session) Rules() Rules { return s.rules }

// Seed returns the seed every run starts from.
func (s *Session) Seed() int64 { return s.seed }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Bounds returns the playfield rect.
func (s *Session) Bounds() core.Rect {
	w, h := s.rules.Size()
	return core.NewRect(0, 0, w, h)
}

// Start builds the first run. Calling it again has no effect.
func (s *Session) Start() {
	if s.phase != PhaseIdle {
		return
	}
	s.reset()
}

// Restart leaves GameOver (or abandons a running run) with a fresh store
// built from the same seed, so the initial entity set matches Start.
func (s *Session) Restart() {
	if s.phase == PhaseIdle {
		return
	}
	s.reset()
}

func (s *Session) reset() {
	s.store = NewStore(s.Bounds(), s.seed)
	s.rules.Setup(s.store)
	s.score = 0
	s.opponentScore = 0
	s.last = Events{}
	s.phase = PhaseRunning
}

// Step advances one frame at wall-clock time now. It is a no-op unless the
// session is running.
func (s *Session) Step(now time.Time) Events {
	if s.phase != PhaseRunning {
		return Events{}
	}

	s.store.Frame++
	ctrl := s.source.Sample()
	s.rules.Advance(s.store, ctrl, now)
	ev := s.rules.Resolve(s.store)
	s.store.Compact()
	s.apply(ev)
	s.last = ev

	if s.observer != nil {
		s.observer.ObserveFrame(Frame{Index: s.store.Frame, At: now, Control: ctrl, Events: ev})
	}
	return ev
}

func (s *Session) apply(ev Events) {
	if ev.Empty() {
		return
	}
	sc := s.rules.Scoring()
	s.score += ev.Kills*sc.KillPoints + ev.PlayerPoints
	s.opponentScore += ev.OpponentPoints

	if ev.PlayerHit {
		s.phase = PhaseGameOver
		return
	}
	if sc.WinScore > 0 && (s.score >= sc.WinScore || s.opponentScore >= sc.WinScore) {
		s.phase = PhaseGameOver
	}
}

// TargetRange returns the pointer target range of the current run, if the
// rules define one.
func (s *Session) TargetRange() (min, max float64, ok bool) {
	tr, isRanger := s.rules.(TargetRanger)
	if !isRanger || s.store == nil {
		return 0, 0, false
	}
	min, max = tr.TargetRange(s.store)
	return min, max, true
}

// Snapshot returns a copy of the visible state. Mutating it does not affect
// the session.
func (s *Session) Snapshot() Snapshot {
	w, h := s.rules.Size()
	snap := Snapshot{
		Variant:       s.rules.ID(),
		Phase:         s.phase,
		Score:         s.score,
		OpponentScore: s.opponentScore,
		Width:         w,
		Height:        h,
		Last:          s.last,
	}
	if s.store == nil {
		return snap
	}

	snap.Frame = s.store.Frame
	snap.Player = copyBody(s.store.Player)
	snap.Opponent = copyBody(s.store.Opponent)
	snap.Ball = copyBody(s.store.Ball)
	snap.Obstacles = copyBodies(s.store.Obstacles)
	snap.Projectiles = copyBodies(s.store.Projectiles)
	snap.Bricks = copyBodies(s.store.Bricks)
	return snap
}
