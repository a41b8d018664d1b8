package core

// ControlSignal is the per-frame movement and action intent, independent of
// the input source that produced it. Keyboard and motion contributions are
// kept in separate channels so that kinematics can weight them differently
// and still add them together.
type ControlSignal struct {
	MoveX, MoveY float64 // Keyboard axis, each in [-1, 1]
	TiltX, TiltY float64 // Motion sensor axis, each in [-1, 1]
	Action       bool    // Fire/launch held this frame

	// HasTarget is set when a pointer placed the paddle directly this frame.
	// TargetX is an absolute playfield coordinate already clamped to the
	// travel range configured on the normalizer.
	HasTarget bool
	TargetX   float64

	// PointerHeld is set for every frame the pointer stays down, moving or
	// not.
	PointerHeld bool
}
