// Package bridge relays motion sensors from a phone to the game over a
// WebSocket. A "host" client plays the role of an embedding platform that
// streams polled readings; a "browser" client forwards native device motion
// events behind a permission prompt.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/tilt-arcade/internal/motion"
)

// Message types on the wire.
const (
	TypeHello             = "hello"
	TypeReading           = "reading"
	TypeMotion            = "motion"
	TypePermission        = "permission"
	TypeStart             = "start"
	TypeRequestPermission = "request_permission"
	TypeStop              = "stop"
)

// Role identifies what a client offers.
type Role string

const (
	RoleNone    Role = ""
	RoleHost    Role = "host"
	RoleBrowser Role = "browser"
)

// Message is the single JSON envelope used in both directions.
type Message struct {
	Type string `json:"type"`

	// hello
	Role Role `json:"role,omitempty"`

	// reading, motion
	Kind string   `json:"kind,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
	Z    *float64 `json:"z,omitempty"`

	// permission
	State string `json:"state,omitempty"`

	// start, in milliseconds
	RefreshRate int `json:"refresh_rate,omitempty"`
}

func decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("bridge: invalid message: %w", err)
	}
	if m.Type == "" {
		return Message{}, fmt.Errorf("bridge: message without type")
	}
	return m, nil
}

func parseKind(s string) motion.Kind {
	if s == motion.KindOrientation.String() {
		return motion.KindOrientation
	}
	return motion.KindAcceleration
}

func parsePermission(s string) motion.Permission {
	if s == "granted" {
		return motion.PermissionGranted
	}
	return motion.PermissionDenied
}

// knownType reports whether t is a client-to-server type. Used to bound the
// metric label set.
func knownType(t string) bool {
	switch t {
	case TypeHello, TypeReading, TypeMotion, TypePermission:
		return true
	}
	return false
}
