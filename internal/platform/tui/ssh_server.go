// Package tui provides the terminal front end of the catch game, including
// SSH server support via Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/profile"
	"github.com/vovakirdan/catch-arcade/internal/recorder"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.catch/host_key.
	HostKeyPath string

	// DBPath is the path to the local database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// APIBase overrides the remote service base URL for every session.
	APIBase string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.catch/catch.db",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves the game over SSH. Every connection gets its own
// controller; the active profile is remembered per SSH user.
type SSHServer struct {
	config SSHServerConfig
	game   config.Config
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. logger may be nil.
func NewSSHServer(cfg SSHServerConfig, gameCfg config.Config, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = logging.New(os.Stderr, "info", "catch-ssh")
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open local database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		game:   gameCfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = filepath.Join(config.Dir(), "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionDeps builds the collaborators of one SSH session.
func (s *SSHServer) sessionDeps(user string) (Deps, error) {
	logger := s.logger.With("user", user)

	client := api.NewClient(s.game.Remote, logger)
	if s.config.APIBase != "" {
		if err := client.SetBaseURL(s.config.APIBase); err != nil {
			return Deps{}, err
		}
	}

	// A nil *storage.Store must not end up inside the interfaces.
	var settings profile.Settings
	var results recorder.Results
	if s.store != nil {
		settings = s.store
		results = s.store
	}

	profiles, err := profile.NewStore(client, settings, user, logger)
	if err != nil {
		return Deps{}, err
	}

	return Deps{
		Config:   s.game,
		Client:   client,
		Profiles: profiles,
		Recorder: recorder.New(client, profiles, results, logger),
		Logger:   logger,
	}, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	deps, err := s.sessionDeps(sshSession.User())
	if err != nil {
		s.logger.Error("cannot prepare session", "user", sshSession.User(), "error", err)
		return nil, nil
	}

	rc := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		Seed:    time.Now().UnixNano(),
	}

	return NewModel(deps, rc), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
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

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
