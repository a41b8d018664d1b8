package motion

// Key is a logical control key, abstracted from physical key identifiers.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyAction
	keyCount
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyAction:
		return "Action"
	default:
		return "Unknown"
	}
}

// axis returns -1, 0 or 1 for a pair of opposite keys.
func axis(neg, pos bool) float64 {
	var v float64
	if neg {
		v--
	}
	if pos {
		v++
	}
	return v
}
