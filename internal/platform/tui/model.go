package tui

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

// DefaultHoldWindow is how long a key counts as held after its last press
// or repeat. Terminals report presses only, never releases.
const DefaultHoldWindow = 180 * time.Millisecond

// Options configures a game model.
type Options struct {
	Width, Height int   // Initial terminal size, until the first resize
	TickRate      int   // Frames per second (default 60)
	Seed          int64 // 0 picks a time-based seed
	HoldWindow    time.Duration

	// Store, when set, records every run into the replay journal, tagged
	// with Preset.
	Store  *storage.Store
	Preset config.DifficultyPreset
	Logger *log.Logger

	// Nested models report BackToMenu instead of quitting the program.
	Nested bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 24
	}
	if o.TickRate <= 0 {
		o.TickRate = 60
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.HoldWindow <= 0 {
		o.HoldWindow = DefaultHoldWindow
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// accessMsg carries the outcome of the motion access request.
type accessMsg bool

// replayState drives a session from a recorded journal instead of input.
type replayState struct {
	replay storage.Replay
	frames []storage.FrameRecord
	player *storage.Player
	base   time.Time
}

// Model is the Bubble Tea model for one variant. It owns the session and
// feeds it from the input normalizer, or from a replay. A live model borrows
// its normalizer: the caller keeps it across runs and closes it.
type Model struct {
	rules     sim.Rules
	session   *sim.Session
	input     *motion.Normalizer
	ownsInput bool
	replay    *replayState
	opts    Options
	loop    uint64

	keys   KeyMap
	help   help.Model
	canvas *Canvas
	width  int
	height int

	held     map[motion.Key]time.Time
	recorder *storage.Recorder
	now      func() time.Time

	quitting   bool
	backToMenu bool
}

// NewModel creates a model that plays rules with live input.
func NewModel(rules sim.Rules, input *motion.Normalizer, opts Options) Model {
	opts = opts.withDefaults()
	m := newModel(rules, opts)
	m.input = input
	// Nothing held at the end of a previous run carries over.
	m.input.Blur()
	m.session = sim.NewSession(rules, input, opts.Seed)
	m.session.Start()
	m.applyTargetRange()
	m.startRecording()
	return m
}

// NewReplayModel creates a model that re-plays a recorded run.
func NewReplayModel(rules sim.Rules, rep storage.Replay, frames []storage.FrameRecord, opts Options) Model {
	opts = opts.withDefaults()
	opts.Store = nil
	m := newModel(rules, opts)
	m.input = motion.New(motion.Options{})
	m.ownsInput = true
	m.replay = &replayState{replay: rep, frames: frames}
	m.startReplay()
	return m
}

func newModel(rules sim.Rules, opts Options) Model {
	h := help.New()
	h.Width = opts.Width
	return Model{
		rules:  rules,
		opts:   opts,
		loop:   nextLoop(),
		keys:   DefaultKeyMap(),
		help:   h,
		canvas: NewCanvas(opts.Width, opts.Height-1),
		width:  opts.Width,
		height: opts.Height,
		held:   make(map[motion.Key]time.Time),
		now:    time.Now,
	}
}

// Init starts the frame loop and, for live play, the motion access request.
func (m Model) Init() tea.Cmd {
	if m.replay != nil {
		return tickCmd(m.opts.TickRate, m.loop)
	}
	return tea.Batch(tickCmd(m.opts.TickRate, m.loop), m.requestAccess())
}

// requestAccess runs the sensor fallback chain off the frame loop.
func (m Model) requestAccess() tea.Cmd {
	input := m.input
	return func() tea.Msg {
		return accessMsg(<-input.RequestMotionAccess(context.Background()))
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.BlurMsg:
		m.input.Blur()
		clear(m.held)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case accessMsg:
		state := m.input.State()
		m.opts.Logger.Info("motion access", "granted", bool(msg), "tier", state.Tier, "permission", state.Permission)
		return m, nil

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick(msg.At)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finishRecording()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.finishRecording()
		if m.opts.Nested {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if m.session.Phase() == sim.PhaseGameOver || m.replayFinished() {
			m.restart()
		}
		return m, nil
	}

	if m.replay != nil {
		return m, nil
	}
	if k, ok := m.keys.Control(msg); ok {
		m.input.Press(k)
		m.held[k] = m.now()
	}
	return m, nil
}

// handleMouse maps mouse presses and drags to pointer targets.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.replay != nil {
		return m, nil
	}
	x, inField := m.canvas.FieldX(msg.X)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inField {
			m.input.PointerDown(x)
		}
	case tea.MouseActionMotion:
		if inField {
			m.input.PointerMove(x)
		}
	case tea.MouseActionRelease:
		m.input.PointerUp()
	}
	return m, nil
}

// handleTick advances the session by one frame.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}

	if m.replay != nil {
		m.stepReplay(now)
		return m, tickCmd(m.opts.TickRate, m.loop)
	}

	m.releaseExpired(m.now())
	wasRunning := m.session.Phase() == sim.PhaseRunning
	m.session.Step(now)
	if wasRunning && m.session.Phase() == sim.PhaseGameOver {
		snap := m.session.Snapshot()
		m.opts.Logger.Info("run over", "variant", snap.Variant, "score", snap.Score, "opponent", snap.OpponentScore, "frames", snap.Frame)
		m.finishRecording()
	}

	return m, tickCmd(m.opts.TickRate, m.loop)
}

// releaseExpired releases keys that have not repeated within the hold window.
func (m Model) releaseExpired(now time.Time) {
	for k, last := range m.held {
		if now.Sub(last) >= m.opts.HoldWindow {
			m.input.Release(k)
			delete(m.held, k)
		}
	}
}

func (m *Model) restart() {
	if m.replay != nil {
		m.startReplay()
		return
	}
	m.finishRecording()
	m.session.Restart()
	m.applyTargetRange()
	m.startRecording()
}

func (m *Model) applyTargetRange() {
	if min, max, ok := m.session.TargetRange(); ok {
		m.input.SetTargetRange(min, max)
	} else {
		m.input.ClearTargetRange()
	}
}

func (m *Model) startRecording() {
	if m.opts.Store == nil {
		return
	}
	m.recorder = m.opts.Store.NewRecorder(m.session).WithPreset(string(m.opts.Preset))
	m.session.SetObserver(m.recorder)
}

func (m *Model) finishRecording() {
	if m.recorder == nil {
		return
	}
	rec := m.recorder
	m.recorder = nil
	m.session.SetObserver(nil)
	if err := rec.Flush(); err != nil {
		m.opts.Logger.Warn("could not save replay", "error", err)
		return
	}
	if rec.Len() > 0 {
		m.opts.Logger.Info("replay saved", "id", rec.ID(), "frames", rec.Len())
	}
}

func (m *Model) startReplay() {
	r := m.replay
	r.player = storage.NewPlayer(r.frames)
	r.base = time.Time{}
	m.session = sim.NewSession(m.rules, r.player, r.replay.Seed)
	m.session.Start()
}

func (m *Model) stepReplay(now time.Time) {
	r := m.replay
	if r.player.Done() || m.session.Phase() != sim.PhaseRunning {
		return
	}
	if r.base.IsZero() {
		r.base = now
	}
	m.session.Step(r.player.NextAt(r.base))
}

func (m Model) replayFinished() bool {
	return m.replay != nil && (m.replay.player.Done() || m.session.Phase() != sim.PhaseRunning)
}

// View renders the playfield, the HUD and the help footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys))
	footerLines := strings.Count(footer, "\n") + 1

	w, h := m.width, m.height-footerLines
	if m.canvas.Width() != w || m.canvas.Height() != h {
		m.canvas.Resize(w, h)
	}

	snap := m.session.Snapshot()
	m.canvas.DrawSnapshot(snap, 1)
	drawHUD(m.canvas, snap, m.input.State(), m.replay != nil)
	if m.replayFinished() && !snap.GameOver() {
		m.canvas.DrawTextCentered(m.canvas.Height()/2, " END OF REPLAY  r to watch again ", ColorBrightYellow)
	}

	return RenderCanvas(m.canvas) + "\n" + footer
}

// Snapshot returns the current session snapshot.
func (m Model) Snapshot() sim.Snapshot { return m.session.Snapshot() }

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool { return m.backToMenu }

// Close flushes any pending recording. A borrowed normalizer stays open.
func (m Model) Close() {
	m.finishRecording()
	if m.ownsInput {
		m.input.Close()
	}
}

// Run starts a Bubble Tea program playing rules until the user quits. The
// caller closes input.
func Run(rules sim.Rules, input *motion.Normalizer, opts Options) error {
	return run(NewModel(rules, input, opts))
}

// RunReplay starts a Bubble Tea program watching a recorded run.
func RunReplay(rules sim.Rules, rep storage.Replay, frames []storage.FrameRecord, opts Options) error {
	return run(NewReplayModel(rules, rep, frames, opts))
}

func run(model Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return err
}
