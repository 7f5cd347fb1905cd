package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultPath is the callback path registered as the redirect URI.
	DefaultPath = "/authorize.html"

	// DefaultReadTimeout bounds reads on each accepted connection.
	DefaultReadTimeout = 10 * time.Second

	loopbackHost = "127.0.0.1"
)

// State is the lifecycle stage of a [Server].
type State int

const (
	StateIdle State = iota
	StateListening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config describes the callback endpoint. It is copied by [New].
type Config struct {
	// Port on 127.0.0.1. Zero picks a free port.
	Port int
	// Path the provider redirects to. Defaults to [DefaultPath].
	Path string
	// Pages served on landing and callback requests.
	Pages Pages
	// ReadTimeout bounds each connection. Zero uses [DefaultReadTimeout], negative disables it.
	ReadTimeout time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger used for lifecycle and per-connection logs.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener registers an external [Listener] at construction.
func WithListener(l Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// Server is a single-use loopback HTTP listener that captures one implicit grant result.
//
// Lifecycle, listening socket, live connections and the captured result share one mutex
// so that the first terminal callback records its result and stops the server atomically.
type Server struct {
	cfg    Config
	logger *log.Logger

	mu       sync.Mutex
	state    State
	ln       net.Listener
	addr     net.Addr
	result   Result
	listener Listener
	conns    map[net.Conn]struct{}
	done     chan struct{}

	handlers sync.WaitGroup
}

// New validates cfg and returns an idle server.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		cfg.Path = "/" + cfg.Path
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	cfg.Pages = cfg.Pages.withDefaults()

	s := &Server{
		cfg:    cfg,
		logger: log.New(io.Discard),
		conns:  make(map[net.Conn]struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetListener registers the external [Listener]. It replaces any earlier registration.
func (s *Server) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Start binds the loopback listener. It never binds any other interface.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateListening:
		return ErrServerRunning
	case StateStopped:
		return ErrServerStopped
	}

	ln, err := net.Listen("tcp4", net.JoinHostPort(loopbackHost, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return &BindError{Port: s.cfg.Port, Err: err}
	}

	s.ln = ln
	s.addr = ln.Addr()
	s.state = StateListening
	s.logger.Info("callback server listening", "addr", s.addr, "path", s.cfg.Path)
	return nil
}

// Run accepts connections until the server stops, handling each on its own goroutine.
//
// It returns nil when the listener was closed by [Server.Stop] or by ctx, and the
// accept error otherwise. In-flight handlers finish before Run returns.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	ln, state := s.ln, s.state
	s.mu.Unlock()

	switch state {
	case StateIdle:
		return ErrNotListening
	case StateStopped:
		return nil
	}

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info("context done, stopping callback server", "error", ctx.Err())
			s.Stop()
		case <-s.done:
		case <-finished:
		}
	}()

	defer s.handlers.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.State() == StateStopped && errors.Is(err, net.ErrClosed) {
				s.logger.Debug("accept loop ended")
				return nil
			}
			s.Stop()
			return fmt.Errorf("accept failed: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}

		s.handlers.Add(1)
		go s.handle(conn)
	}
}

// ListenAndRun starts the server and blocks in [Server.Run].
func (s *Server) ListenAndRun(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Stop closes the listening socket and moves the server to [StateStopped].
//
// Calling Stop more than once, or from a connection handler, is safe.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Server) stopLocked() {
	if s.state == StateStopped {
		return
	}
	s.state = StateStopped
	close(s.done)

	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			s.logger.Debug("failed to close listener", "error", err)
		}
		s.ln = nil
	}

	// Idle connections (preconnects, favicon fetches) stop waiting for a request line.
	// Writes of in-flight responses are unaffected.
	now := time.Now()
	for conn := range s.conns {
		_ = conn.SetReadDeadline(now)
	}
	s.logger.Info("callback server stopped")
}

// IsRunning reports whether the server is listening.
func (s *Server) IsRunning() bool {
	return s.State() == StateListening
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the server is stopped.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Result returns the captured result, which is unset until a terminal callback arrives.
func (s *Server) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Addr returns the bound address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// RedirectURL is the URI to register with the provider.
//
// Before [Server.Start] with port zero, the port in the URL is zero as well.
func (s *Server) RedirectURL() string {
	host := net.JoinHostPort(loopbackHost, strconv.Itoa(s.cfg.Port))
	if addr := s.Addr(); addr != nil {
		host = addr.String()
	}
	return "http://" + host + s.cfg.Path
}

// complete records r if no result is set yet, stops the server and notifies the
// external listener. It reports whether r was recorded.
func (s *Server) complete(r Result) bool {
	s.mu.Lock()
	if s.result.IsSet() {
		s.mu.Unlock()
		return false
	}
	s.result = r
	listener := s.listener
	s.stopLocked()
	s.mu.Unlock()

	r.notify(listener)
	return true
}

// track registers conn and arms its deadline. Both happen under the lock so a concurrent
// Stop either sees the connection and releases it, or makes track fail.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateListening {
		return false
	}
	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
