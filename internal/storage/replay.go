package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tilt-arcade/internal/core"
	"github.com/vovakirdan/tilt-arcade/internal/sim"
)

// Replay is the header of a recorded run.
type Replay struct {
	ID            string
	Variant       string
	Seed          int64
	Width, Height float64
	Preset        string // difficulty preset the run was played at
	Frames        int
	CreatedAt     time.Time
}

// FrameRecord is one recorded frame: its index, its offset from the first
// frame, and the control signal the session sampled.
type FrameRecord struct {
	Frame   int
	At      time.Duration
	Control core.ControlSignal
}

// Recorder journals the frames of one run. Install it with
// Session.SetObserver; it is called from the frame loop only.
type Recorder struct {
	store   *Store
	replay  Replay
	first   time.Time
	frames  []FrameRecord
	flushed bool
}

// NewRecorder starts a recording for a session that has been started.
func (s *Store) NewRecorder(session *sim.Session) *Recorder {
	b := session.Bounds()
	return &Recorder{
		store: s,
		replay: Replay{
			ID:      uuid.NewString(),
			Variant: session.Rules().ID(),
			Seed:    session.Seed(),
			Width:   b.W,
			Height:  b.H,
		},
	}
}

// WithPreset tags the recording with the difficulty preset of the run.
func (r *Recorder) WithPreset(preset string) *Recorder {
	r.replay.Preset = preset
	return r
}

// ID returns the replay id the recording will be saved under.
func (r *Recorder) ID() string { return r.replay.ID }

// Len returns the number of buffered frames.
func (r *Recorder) Len() int { return len(r.frames) }

// ObserveFrame implements sim.Observer.
func (r *Recorder) ObserveFrame(f sim.Frame) {
	if r.flushed {
		return
	}
	if len(r.frames) == 0 {
		r.first = f.At
	}
	r.frames = append(r.frames, FrameRecord{
		Frame:   f.Index,
		At:      f.At.Sub(r.first),
		Control: f.Control,
	})
}

// Flush writes the replay and its frames in one transaction. Later frames
// are ignored and later calls do nothing. A recording with no frames is not
// written.
func (r *Recorder) Flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	if len(r.frames) == 0 {
		return nil
	}

	tx, err := r.store.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	rep := r.replay
	if _, err := tx.Exec(
		"INSERT INTO replays (id, variant, seed, width, height, preset) VALUES (?, ?, ?, ?, ?, ?)",
		rep.ID, rep.Variant, rep.Seed, rep.Width, rep.Height, rep.Preset,
	); err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO replay_frames
		 (replay_id, frame, at_ns, move_x, move_y, tilt_x, tilt_y, action, has_target, target_x, pointer_held)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range r.frames {
		c := f.Control
		if _, err := stmt.Exec(
			rep.ID, f.Frame, int64(f.At),
			c.MoveX, c.MoveY, c.TiltX, c.TiltY,
			c.Action, c.HasTarget, c.TargetX, c.PointerHeld,
		); err != nil {
			return fmt.Errorf("storage: cannot save frame %d: %w", f.Frame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit replay: %w", err)
	}
	return nil
}

// Replays lists replay headers, newest first.
func (s *Store) Replays(limit int) ([]Replay, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.variant, r.seed, r.width, r.height, r.preset, r.created_at,
		        (SELECT COUNT(*) FROM replay_frames f WHERE f.replay_id = r.id)
		 FROM replays r
		 ORDER BY r.created_at DESC, r.rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var out []Replay
	for rows.Next() {
		var rep Replay
		var createdAt any
		if err := rows.Scan(&rep.ID, &rep.Variant, &rep.Seed, &rep.Width, &rep.Height, &rep.Preset, &createdAt, &rep.Frames); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rep.CreatedAt = parseTime(createdAt)
		out = append(out, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// Load returns a replay header and its frames in order.
func (s *Store) Load(id string) (Replay, []FrameRecord, error) {
	var rep Replay
	var createdAt any
	err := s.db.QueryRow(
		"SELECT id, variant, seed, width, height, preset, created_at FROM replays WHERE id = ?",
		id,
	).Scan(&rep.ID, &rep.Variant, &rep.Seed, &rep.Width, &rep.Height, &rep.Preset, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Replay{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Replay{}, nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	rep.CreatedAt = parseTime(createdAt)

	rows, err := s.db.Query(
		`SELECT frame, at_ns, move_x, move_y, tilt_x, tilt_y, action, has_target, target_x, pointer_held
		 FROM replay_frames
		 WHERE replay_id = ?
		 ORDER BY frame`,
		id,
	)
	if err != nil {
		return Replay{}, nil, fmt.Errorf("storage: cannot query frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRecord
	for rows.Next() {
		var f FrameRecord
		var at int64
		c := &f.Control
		if err := rows.Scan(&f.Frame, &at, &c.MoveX, &c.MoveY, &c.TiltX, &c.TiltY, &c.Action, &c.HasTarget, &c.TargetX, &c.PointerHeld); err != nil {
			return Replay{}, nil, fmt.Errorf("storage: cannot scan frame: %w", err)
		}
		f.At = time.Duration(at)
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return Replay{}, nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	rep.Frames = len(frames)
	return rep, frames, nil
}

// Delete removes a replay and its frames.
func (s *Store) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM replay_frames WHERE replay_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete frames: %w", err)
	}
	res, err := tx.Exec("DELETE FROM replays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}
