package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/lineserver/internal/domain"
	"github.com/bnema/lineserver/internal/ports"
	"github.com/google/uuid"
)

var ErrNoLineSource = errors.New("line source is required")

type ServerConfig struct {
	Addr        string
	Coordinator CoordinatorConfig
}

// Server loads the line store once and then hands it to a Coordinator.
type Server struct {
	id     string
	source ports.LineSource
	cfg    ServerConfig
	log    *slog.Logger
}

func NewServer(source ports.LineSource, cfg ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	id := uuid.Must(uuid.NewV7()).String()
	return &Server{
		id:     id,
		source: source,
		cfg:    cfg,
		log:    log.With("server_id", id),
	}
}

func (s *Server) ID() string {
	return s.id
}

// Start loads the line store and binds the listening socket. Either failure
// aborts startup before any connection is accepted.
func (s *Server) Start(ctx context.Context) (*Coordinator, error) {
	if s.source == nil {
		return nil, ErrNoLineSource
	}

	lines, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lines from %s: %w", s.source.Describe(), err)
	}
	s.log.Info("lines loaded", "source", s.source.Describe(), "lines", lines.Len(), "addressable", lines.Addressable())
	if lines.Len() > domain.MaxAddressableLines {
		s.log.Warn("line source exceeds addressable range", "unreachable", lines.Len()-domain.MaxAddressableLines)
	}

	cfg := s.cfg.Coordinator
	cfg.Log = s.log

	coordinator, err := Listen(s.cfg.Addr, lines, cfg)
	if err != nil {
		return nil, err
	}

	return coordinator, nil
}

// Serve is Start followed by Run.
func (s *Server) Serve(ctx context.Context) error {
	coordinator, err := s.Start(ctx)
	if err != nil {
		return err
	}

	return coordinator.Run(ctx)
}
