package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tilt-arcade/internal/config"
	"github.com/vovakirdan/tilt-arcade/internal/motion"
	"github.com/vovakirdan/tilt-arcade/internal/motion/bridge"
	"github.com/vovakirdan/tilt-arcade/internal/registry"
	"github.com/vovakirdan/tilt-arcade/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.arcade/host_key.
	HostKeyPath string

	// DBPath is the path to the replay journal.
	DBPath string

	// Record saves every run played over SSH into the journal.
	Record bool

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Bridge, when set, lends its host and native sensors to every session.
	Bridge *bridge.Server

	// Motion tunes the per-session input normalizer.
	Motion motion.Options

	HoldWindow time.Duration
	Logger     *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.arcade/replays.db",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server for the arcade.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arcade-ssh",
		})
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open replay journal", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".arcade", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s.sessionEnv(sshSession.User()), pty.Window.Width, pty.Window.Height)

	// The program may end without a final Update; release whatever game
	// was live when the connection dropped, then the connection's input.
	go func() {
		<-sshSession.Context().Done()
		model.cleanup.close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

func (s *SSHServer) sessionEnv(user string) sessionEnv {
	env := sessionEnv{
		holdWindow: s.config.HoldWindow,
		motion:     s.config.Motion,
		logger:     s.logger.With("user", user),
	}
	if s.config.Bridge != nil {
		env.motion.Host = s.config.Bridge.Host()
		env.motion.Native = s.config.Bridge.Native()
	}
	env.motion.Logger = env.logger
	if s.store != nil {
		env.replays = s.store
		if s.config.Record {
			env.record = s.store
		}
	}
	return env
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionEnv is what one SSH session may use.
type sessionEnv struct {
	holdWindow time.Duration
	motion     motion.Options
	record     *storage.Store // nil disables recording
	replays    *storage.Store // nil shows an empty browser
	logger     *log.Logger
}

// sessionCleanup holds the release func of the live game and the
// connection's normalizer. It is shared by every copy of a SessionModel.
type sessionCleanup struct {
	mu      sync.Mutex
	release func()
	input   *motion.Normalizer
}

func (c *sessionCleanup) set(fn func()) {
	c.mu.Lock()
	c.release = fn
	c.mu.Unlock()
}

func (c *sessionCleanup) run() {
	c.mu.Lock()
	fn := c.release
	c.release = nil
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// close releases the live game and closes the connection's normalizer.
func (c *sessionCleanup) close() {
	c.run()
	c.input.Close()
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewGame
	viewReplays
)

// SessionModel manages the full arcade session flow over SSH:
// menu -> game or replay browser -> menu.
type SessionModel struct {
	env     sessionEnv
	width   int
	height  int
	view    sessionView
	menu    MenuModel
	replays ReplaysModel
	game    Model
	input   *motion.Normalizer
	cleanup *sessionCleanup

	quitting bool
}

// NewSessionModel creates a new session model. Every game on the connection
// shares one normalizer, so sensor access is asked for at most once.
func NewSessionModel(env sessionEnv, width, height int) SessionModel {
	input := motion.New(env.motion)
	return SessionModel{
		env:     env,
		width:   width,
		height:  height,
		menu:    NewMenuModel(width, height),
		input:   input,
		cleanup: &sessionCleanup{input: input},
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsm.Width, wsm.Height
	}

	switch m.view {
	case viewGame:
		return m.updateGame(msg)
	case viewReplays:
		return m.updateReplays(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsReplays():
		m.replays = NewReplaysModel(m.env.replays, m.width, m.height)
		m.view = viewReplays
		return m, m.replays.Init()

	case m.menu.Selected() != nil:
		return m.startGame(m.menu.Selected().ID)
	}

	return m, cmd
}

func (m SessionModel) startGame(id string) (tea.Model, tea.Cmd) {
	rules, err := registry.Create(id, registry.Options{})
	if err != nil {
		m.env.logger.Error("could not create game", "game", id, "error", err)
		m.menu = NewMenuModel(m.width, m.height)
		return m, nil
	}

	m.game = NewModel(rules, m.input, m.gameOptions())
	m.view = viewGame
	m.cleanup.set(m.game.Close)
	m.env.logger.Info("game started", "game", id)
	return m, m.game.Init()
}

func (m SessionModel) startReplay(id string) (tea.Model, tea.Cmd) {
	game, err := openReplay(m.env.replays, id, m.gameOptions())
	if err != nil {
		m.env.logger.Error("could not open replay", "id", id, "error", err)
		m.replays = NewReplaysModel(m.env.replays, m.width, m.height)
		return m, nil
	}
	m.game = game
	m.view = viewGame
	m.cleanup.set(m.game.Close)
	return m, m.game.Init()
}

// openReplay loads a replay and builds a model watching it.
func openReplay(store *storage.Store, id string, opts Options) (Model, error) {
	if store == nil {
		return Model{}, storage.ErrNotFound
	}
	rep, frames, err := store.Load(id)
	if err != nil {
		return Model{}, err
	}
	rules, err := registry.Create(rep.Variant, registry.Options{Preset: config.DifficultyPreset(rep.Preset)})
	if err != nil {
		return Model{}, err
	}
	return NewReplayModel(rules, rep, frames, opts), nil
}

func (m SessionModel) gameOptions() Options {
	return Options{
		Width:      m.width,
		Height:     m.height,
		HoldWindow: m.env.holdWindow,
		Store:      m.env.record,
		Logger:     m.env.logger,
		Nested:     true,
	}
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = gameModel
		m.cleanup.set(m.game.Close)
	}

	if m.game.BackToMenu() {
		m.cleanup.run()
		m.view = viewMenu
		m.menu = NewMenuModel(m.width, m.height)
		return m, m.menu.Init()
	}

	if m.game.IsQuitting() {
		m.cleanup.close()
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateReplays handles updates when browsing replays.
func (m SessionModel) updateReplays(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.replays.Update(msg)
	if replaysModel, ok := newModel.(ReplaysModel); ok {
		m.replays = replaysModel
	}

	switch {
	case m.replays.quitting:
		m.quitting = true
		return m, tea.Quit

	case m.replays.IsGoingBack():
		m.view = viewMenu
		m.menu = NewMenuModel(m.width, m.height)
		return m, m.menu.Init()

	case m.replays.Selected() != "":
		return m.startReplay(m.replays.Selected())
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewGame:
		return m.game.View()
	case viewReplays:
		return m.replays.View()
	}
	return m.menu.View()
}
