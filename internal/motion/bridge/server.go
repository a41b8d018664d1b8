package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tilt-arcade/internal/motion"
)

// ErrNoHostClient is returned by the host sensor when no host client
// connected within the start timeout.
var ErrNoHostClient = fmt.Errorf("bridge: no host client connected: %w", motion.ErrHostUnavailable)

// ErrNoBrowserClient is returned when a permission request finds no browser.
var ErrNoBrowserClient = errors.New("bridge: no browser client connected")

const (
	readLimit    = 4096
	writeTimeout = time.Second
)

// Config controls a bridge Server.
type Config struct {
	// StartTimeout bounds how long the host sensor waits for a host client.
	StartTimeout time.Duration
	// PermissionTimeout bounds how long a permission prompt may stay open.
	PermissionTimeout time.Duration
	// RefreshRate is sent to host clients in the start message.
	RefreshRate time.Duration
	// RateLimit and Burst bound inbound messages per connection.
	RateLimit float64
	Burst     int
	// CheckOrigin overrides the upgrader origin check. Nil allows all
	// origins, which is what a phone on the local network needs.
	CheckOrigin func(*http.Request) bool
	Logger      *log.Logger
}

// DefaultConfig returns the stock bridge settings.
func DefaultConfig() Config {
	return Config{
		StartTimeout:      2 * time.Second,
		PermissionTimeout: 30 * time.Second,
		RefreshRate:       motion.DefaultPollInterval,
		RateLimit:         240,
		Burst:             60,
	}
}

type client struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter

	role Role // guarded by Server.mu

	writeMu sync.Mutex
}

func (c *client) send(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(m)
}

// Server accepts sensor clients and exposes them as motion sensors.
type Server struct {
	cfg      Config
	logger   *log.Logger
	metrics  *metrics
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	clients map[string]*client
	changed chan struct{} // closed and replaced on every role change
	reading motion.Reading
	subs    map[int]func(motion.Event)
	nextSub int
	reply   chan motion.Permission
	closed  bool
}

// NewServer creates a bridge server. Zero fields in cfg take defaults.
func NewServer(cfg Config) *Server {
	def := DefaultConfig()
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = def.StartTimeout
	}
	if cfg.PermissionTimeout <= 0 {
		cfg.PermissionTimeout = def.PermissionTimeout
	}
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = def.RefreshRate
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	s := &Server{
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: newMetrics(),
		clients: make(map[string]*client),
		changed: make(chan struct{}),
		subs:    make(map[int]func(motion.Event)),
		reply:   make(chan motion.Permission, 1),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     cfg.CheckOrigin,
	}
	if s.upgrader.CheckOrigin == nil {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	s.router = r
	return s
}

// Handler returns the HTTP handler serving /ws, /metrics and /healthz.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sensor bridge listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("bridge: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("bridge: listen on %s: %w", addr, err)
	}
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Host returns a motion.HostSensor backed by host clients.
func (s *Server) Host() motion.HostSensor { return &hostSensor{s: s} }

// Native returns a motion.NativeSensor backed by browser clients.
func (s *Server) Native() motion.NativeSensor { return &nativeSensor{s: s} }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.Clients(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "bridge closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst),
	}
	s.register(c)
	s.logger.Info("sensor client connected", "id", c.id, "remote", r.RemoteAddr)

	defer func() {
		s.unregister(c)
		_ = conn.Close()
		s.logger.Info("sensor client disconnected", "id", c.id)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			s.metrics.dropped.WithLabelValues(dropRate).Inc()
			continue
		}
		msg, err := decode(data)
		if err != nil {
			s.metrics.dropped.WithLabelValues(dropMalformed).Inc()
			s.logger.Debug("dropped message", "id", c.id, "error", err)
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.metrics.clients.Set(float64(len(s.clients)))
	s.mu.Unlock()
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.metrics.clients.Set(float64(len(s.clients)))
	s.notifyLocked()
	s.mu.Unlock()
}

// notifyLocked wakes every waiter in waitClient. Caller holds s.mu.
func (s *Server) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Server) dispatch(c *client, msg Message) {
	if !knownType(msg.Type) {
		s.metrics.dropped.WithLabelValues(dropUnknown).Inc()
		return
	}

	s.mu.Lock()
	role := c.role
	s.mu.Unlock()

	if msg.Type != TypeHello && role == RoleNone {
		s.metrics.dropped.WithLabelValues(dropNoHello).Inc()
		return
	}

	switch msg.Type {
	case TypeHello:
		if msg.Role != RoleHost && msg.Role != RoleBrowser {
			s.metrics.dropped.WithLabelValues(dropMalformed).Inc()
			return
		}
		s.mu.Lock()
		c.role = msg.Role
		s.notifyLocked()
		s.mu.Unlock()
		s.logger.Info("sensor client identified", "id", c.id, "role", msg.Role)

	case TypeReading:
		if role != RoleHost {
			s.metrics.dropped.WithLabelValues(dropWrongRole).Inc()
			return
		}
		s.mu.Lock()
		s.reading = motion.Reading{X: msg.X, Y: msg.Y, Z: msg.Z}
		s.mu.Unlock()

	case TypeMotion:
		if role != RoleBrowser {
			s.metrics.dropped.WithLabelValues(dropWrongRole).Inc()
			return
		}
		ev := motion.Event{Kind: parseKind(msg.Kind), X: msg.X, Y: msg.Y}
		for _, fn := range s.subscribers() {
			fn(ev)
		}

	case TypePermission:
		if role != RoleBrowser {
			s.metrics.dropped.WithLabelValues(dropWrongRole).Inc()
			return
		}
		select {
		case s.reply <- parsePermission(msg.State):
		default:
			// No outstanding request or one answer already queued.
		}
	}

	s.metrics.messages.WithLabelValues(msg.Type).Inc()
}

func (s *Server) subscribers() []func(motion.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]func(motion.Event), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

// waitClient blocks until a client with role is connected or ctx ends.
func (s *Server) waitClient(ctx context.Context, role Role) (*client, error) {
	for {
		s.mu.Lock()
		for _, c := range s.clients {
			if c.role == role {
				s.mu.Unlock()
				return c, nil
			}
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// broadcast sends m to every client with role and returns how many got it.
func (s *Server) broadcast(role Role, m Message) int {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		if c.role == role {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.send(m); err != nil {
			s.logger.Warn("send failed", "id", c.id, "type", m.Type, "error", err)
			continue
		}
		sent++
	}
	return sent
}
