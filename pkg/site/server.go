package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownGrace     time.Duration
	// SweepInterval is how often idle visitors are dropped. Zero disables
	// the sweeper.
	SweepInterval time.Duration
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	return c
}

// Server runs a Site over HTTP.
type Server struct {
	site       *Site
	config     ServerConfig
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer wraps site in an http.Server.
func NewServer(site *Site, config ServerConfig) (*Server, error) {
	if site == nil {
		return nil, errors.New("site: server needs a site")
	}
	config = config.withDefaults()
	return &Server{
		site:   site,
		config: config,
		logger: site.logger,
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           site.Handler(),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
		},
	}, nil
}

// ListenAndServe listens on the configured address until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("site: listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then drains in-flight
// requests for at most the shutdown grace period.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if ctx == nil {
		return errors.New("site: context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Info("vortex listening", zap.String("addr", ln.Addr().String()))
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if s.config.SweepInterval > 0 {
		go s.sweep(sweepCtx, s.config.SweepInterval)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("site: shutdown: %w", err)
		}
		s.logger.Info("vortex stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("site: serve: %w", err)
	}
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.site.Sweep()
		}
	}
}
