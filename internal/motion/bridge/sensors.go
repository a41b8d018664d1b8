package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/tilt-arcade/internal/motion"
)

// hostSensor adapts host clients to motion.HostSensor.
type hostSensor struct {
	s *Server
}

func (h *hostSensor) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.s.cfg.StartTimeout)
	defer cancel()

	c, err := h.s.waitClient(ctx, RoleHost)
	if err != nil {
		return ErrNoHostClient
	}

	h.s.mu.Lock()
	h.s.reading = motion.Reading{}
	h.s.mu.Unlock()

	start := Message{Type: TypeStart, RefreshRate: int(h.s.cfg.RefreshRate.Milliseconds())}
	if err := c.send(start); err != nil {
		return fmt.Errorf("bridge: cannot start host %s: %w", c.id, errors.Join(err, motion.ErrHostUnavailable))
	}
	h.s.logger.Info("host sensor started", "id", c.id, "refresh_ms", start.RefreshRate)
	return nil
}

func (h *hostSensor) Reading() motion.Reading {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.reading
}

func (h *hostSensor) Stop() {
	h.s.broadcast(RoleHost, Message{Type: TypeStop})
}

// nativeSensor adapts browser clients to motion.NativeSensor.
type nativeSensor struct {
	s *Server
}

// RequiresPermission is always true: a phone browser must ask the user
// before it streams device motion.
func (n *nativeSensor) RequiresPermission() bool { return true }

func (n *nativeSensor) RequestPermission(ctx context.Context) (motion.Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, n.s.cfg.PermissionTimeout)
	defer cancel()

	c, err := n.s.waitClient(ctx, RoleBrowser)
	if err != nil {
		return motion.PermissionDenied, fmt.Errorf("%w: %w", ErrNoBrowserClient, err)
	}

	// Discard a stale answer nobody asked for.
	select {
	case <-n.s.reply:
	default:
	}

	if err := c.send(Message{Type: TypeRequestPermission}); err != nil {
		return motion.PermissionDenied, fmt.Errorf("bridge: cannot prompt browser %s: %w", c.id, err)
	}

	select {
	case p := <-n.s.reply:
		return p, nil
	case <-ctx.Done():
		return motion.PermissionDenied, fmt.Errorf("bridge: permission prompt unanswered: %w", ctx.Err())
	}
}

func (n *nativeSensor) Subscribe(fn func(motion.Event)) func() {
	s := n.s
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
