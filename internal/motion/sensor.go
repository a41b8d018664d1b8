package motion

import (
	"context"
	"errors"
)

// ErrHostUnavailable is returned by a HostSensor that cannot run in the
// current environment.
var ErrHostUnavailable = errors.New("motion: host sensor unavailable")

// Kind is the physical quantity a sensor reports.
type Kind int

const (
	KindAcceleration Kind = iota // Acceleration including gravity, m/s²
	KindOrientation              // Device orientation, degrees
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAcceleration:
		return "acceleration"
	case KindOrientation:
		return "orientation"
	default:
		return "unknown"
	}
}

// Reading is one polled snapshot from a host sensor. Axes the host could not
// provide are nil; a reading with a nil X or Y is skipped.
type Reading struct {
	X, Y, Z *float64
}

// Event is one native motion event. Nil axes mark a malformed payload.
type Event struct {
	Kind Kind
	X, Y *float64
}

// HostSensor is a motion API exposed by an embedding host platform.
// Start blocks until the host confirms or refuses; after a successful Start
// the latest values are read with Reading at the normalizer's poll interval.
type HostSensor interface {
	Start(ctx context.Context) error
	Reading() Reading
	Stop()
}

// NativeSensor delivers device motion events, possibly behind a one-time
// user permission prompt.
type NativeSensor interface {
	// RequiresPermission reports whether RequestPermission must be called
	// before Subscribe.
	RequiresPermission() bool

	// RequestPermission prompts once and blocks until the user answers.
	RequestPermission(ctx context.Context) (Permission, error)

	// Subscribe registers fn for every event and returns a function that
	// detaches it. fn may be called from any goroutine.
	Subscribe(fn func(Event)) (unsubscribe func())
}
