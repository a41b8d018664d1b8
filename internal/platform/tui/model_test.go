package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// doomedRules ends every run with a hit on the given frame.
type doomedRules struct {
	hitOn  int
	frames int
}

func (r *doomedRules) ID() string                                        { return "doomed" }
func (r *doomedRules) Title() string                                     { return "Doomed" }
func (r *doomedRules) Size() (w, h float64)                              { return 40, 20 }
func (r *doomedRules) Setup(*sim.Store)                                  { r.frames = 0 }
func (r *doomedRules) Advance(*sim.Store, core.ControlSignal, time.Time) { r.frames++ }
func (r *doomedRules) Scoring() sim.Scoring                              { return sim.Scoring{} }

func (r *doomedRules) Resolve(*sim.Store) sim.Events {
	return sim.Events{PlayerHit: r.frames >= r.hitOn}
}

// testModel builds a live model with a controllable clock.
func testModel(t *testing.T, rules sim.Rules, opts Options) (Model, *motion.Normalizer, *time.Time) {
	t.Helper()
	input := motion.New(motion.Options{})
	t.Cleanup(input.Close)

	opts.Seed = 1
	m := NewModel(rules, input, opts)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }
	return m, input, &clock
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", next)
	}
	return nm, cmd
}

func tick(t *testing.T, m Model, at time.Time) Model {
	t.Helper()
	m, _ = update(t, m, TickMsg{At: at, Loop: m.loop})
	return m
}

func TestHeldKeyReleasesAfterHoldWindow(t *testing.T) {
	m, input, clock := testModel(t, &doomedRules{hitOn: 1000}, Options{HoldWindow: 150 * time.Millisecond})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if !input.Held(motion.KeyLeft) {
		t.Fatal("left should be held after a press")
	}

	*clock = clock.Add(100 * time.Millisecond)
	m = tick(t, m, *clock)
	if !input.Held(motion.KeyLeft) {
		t.Error("left should still be held inside the hold window")
	}

	// A repeat extends the hold.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	*clock = clock.Add(100 * time.Millisecond)
	m = tick(t, m, *clock)
	if !input.Held(motion.KeyLeft) {
		t.Error("a repeat should extend the hold")
	}

	*clock = clock.Add(200 * time.Millisecond)
	tick(t, m, *clock)
	if input.Held(motion.KeyLeft) {
		t.Error("left should be released once the hold window passes")
	}
}

func TestBlurReleasesKeys(t *testing.T) {
	m, input, _ := testModel(t, &doomedRules{hitOn: 1000}, Options{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if !input.Held(motion.KeyRight) {
		t.Fatal("d should hold right")
	}

	update(t, m, tea.BlurMsg{})
	if input.Held(motion.KeyRight) {
		t.Error("blur should release every key")
	}
}

func TestStaleTickIsIgnored(t *testing.T) {
	m, _, clock := testModel(t, &doomedRules{hitOn: 1000}, Options{})

	m = tick(t, m, *clock)
	before := m.Snapshot().Frame

	m, cmd := update(t, m, TickMsg{At: clock.Add(time.Second), Loop: m.loop + 1})
	if cmd != nil {
		t.Error("a stale tick should not schedule another frame")
	}
	if got := m.Snapshot().Frame; got != before {
		t.Errorf("frame = %d after stale tick, expected %d", got, before)
	}
}

func TestRestartOnlyAfterGameOver(t *testing.T) {
	m, _, clock := testModel(t, &doomedRules{hitOn: 3}, Options{})

	m = tick(t, m, *clock)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Snapshot().Frame; got != 1 {
		t.Fatalf("restart while running should be ignored, frame = %d", got)
	}

	for i := 0; i < 5; i++ {
		*clock = clock.Add(16 * time.Millisecond)
		m = tick(t, m, *clock)
	}
	if !m.Snapshot().GameOver() {
		t.Fatal("run should be over after the hit")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	snap := m.Snapshot()
	if snap.GameOver() || snap.Frame != 0 {
		t.Errorf("after restart: phase %v frame %d, expected a fresh run", snap.Phase, snap.Frame)
	}
}

func TestQuitAndBack(t *testing.T) {
	tests := []struct {
		name       string
		nested     bool
		msg        tea.KeyMsg
		wantQuit   bool
		wantBack   bool
		wantTeaCmd bool
	}{
		{"quit", false, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, true, false, true},
		{"back at top level quits", false, tea.KeyMsg{Type: tea.KeyEsc}, true, false, true},
		{"back when nested", true, tea.KeyMsg{Type: tea.KeyEsc}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := testModel(t, &doomedRules{hitOn: 1000}, Options{Nested: tt.nested})

			m, cmd := update(t, m, tt.msg)
			if m.IsQuitting() != tt.wantQuit {
				t.Errorf("IsQuitting() = %v, expected %v", m.IsQuitting(), tt.wantQuit)
			}
			if m.BackToMenu() != tt.wantBack {
				t.Errorf("BackToMenu() = %v, expected %v", m.BackToMenu(), tt.wantBack)
			}
			if (cmd != nil) != tt.wantTeaCmd {
				t.Errorf("cmd = %v, expected command: %v", cmd, tt.wantTeaCmd)
			}
		})
	}
}

func TestViewFitsTerminal(t *testing.T) {
	m, _, _ := testModel(t, &doomedRules{hitOn: 1000}, Options{Width: 60, Height: 20})

	if got := m.View(); got == "" {
		t.Error("View() should render while running")
	}
	if m.canvas.Width() != 60 || m.canvas.Height() >= 20 {
		t.Errorf("canvas = %dx%d, expected width 60 with room for the footer", m.canvas.Width(), m.canvas.Height())
	}
}
