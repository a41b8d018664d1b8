// Package motion turns keyboard, pointer and motion-sensor input into one
// canonical control signal per frame.
//
// Sensor sources are tried in a fixed order (host-embedded sensor, native
// device events, none) and the first one that starts wins for the rest of
// the process. Sensor callbacks only write the latest tilt into SensorState;
// Sample only reads it, so the frame loop never waits on a sensor.
package motion

// Tier identifies which motion-input source is active.
type Tier int

const (
	TierNone   Tier = iota // No motion input; keyboard and pointer only
	TierHost               // Host-embedded sensor API, polled
	TierNative             // Native device motion/orientation events
)

// String returns a human-readable name for the tier.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierHost:
		return "host"
	case TierNative:
		return "native"
	default:
		return "unknown"
	}
}

// Permission is the state of the native sensor permission request.
// It moves Unrequested -> Pending -> Granted|Denied exactly once.
type Permission int

const (
	PermissionUnrequested Permission = iota
	PermissionPending
	PermissionGranted
	PermissionDenied
)

// String returns a human-readable name for the permission state.
func (p Permission) String() string {
	switch p {
	case PermissionUnrequested:
		return "unrequested"
	case PermissionPending:
		return "pending"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// SensorState is the latest known motion-sensor status.
// TiltX and TiltY are already normalized to [-1, 1].
type SensorState struct {
	Enabled    bool
	TiltX      float64
	TiltY      float64
	Tier       Tier
	Permission Permission
}
