package httpserver

import (
	"fmt"

	"moviehub/pkg/config"

	"go.uber.org/zap"
)

type Options func(s *Server) error

// WithConfig sets the listen address and CORS origins from cfg.
func WithConfig(cfg *config.Config) Options {
	return func(s *Server) error {
		s.Config = cfg
		if cfg.Port != 0 {
			s.Addr = fmt.Sprintf(":%d", cfg.Port)
		}
		if cfg.AllowOrigins != "" {
			s.AllowOrigins = splitOrigins(cfg.AllowOrigins)
		}
		return nil
	}
}

func WithLogger(l *zap.SugaredLogger) Options {
	return func(s *Server) error {
		if l != nil {
			s.Logger = l
		}
		return nil
	}
}

func WithSessions(sessions *Sessions) Options {
	return func(s *Server) error {
		s.Sessions = sessions
		return nil
	}
}

func WithAllowOrigins(origins ...string) Options {
	return func(s *Server) error {
		s.AllowOrigins = origins
		return nil
	}
}
