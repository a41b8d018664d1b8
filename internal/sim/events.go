package sim

// Events is what one collision pass reports back to the session.
type Events struct {
	Kills          int  // obstacles destroyed by projectiles
	PlayerPoints   int  // points scored by the player directly
	OpponentPoints int  // points scored by the opponent
	PlayerHit      bool // the player was struck; ends the run
}

// Add merges o into e.
func (e *Events) Add(o Events) {
	e.Kills += o.Kills
	e.PlayerPoints += o.PlayerPoints
	e.OpponentPoints += o.OpponentPoints
	e.PlayerHit = e.PlayerHit || o.PlayerHit
}

// Empty reports whether nothing happened.
func (e Events) Empty() bool {
	return e == Events{}
}
