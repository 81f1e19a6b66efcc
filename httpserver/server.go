// Package httpserver exposes the movie session usecases over HTTP.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moviehub/errs"
	"moviehub/pkg/config"
	"moviehub/pkg/logger"
	"moviehub/pkg/sentry"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle session stays in memory.
const DefaultSessionTTL = 30 * time.Minute

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Config *config.Config
	Logger *zap.SugaredLogger

	Sessions *Sessions
}

func New(options ...Options) (*Server, error) {
	s := Server{
		Router:       echo.New(),
		Addr:         ":8080",
		AllowOrigins: []string{"*"},
		Config:       config.Empty,
		Logger:       logger.NOOPLogger,
	}

	for _, fn := range options {
		if err := fn(&s); err != nil {
			return nil, err
		}
	}
	if s.Sessions == nil {
		return nil, errors.New("httpserver: a session factory is required")
	}

	s.Router.HideBanner = true
	s.Router.Validator = NewValidator()
	s.Router.HTTPErrorHandler = s.handleError
	s.RegisterGlobalMiddlewares()

	s.RegisterHealthRoutes()
	api := s.Router.Group("/api", s.withSession)
	s.RegisterMovieRoutes(api)
	s.RegisterFavoriteRoutes(api)
	s.RegisterAuthRoutes(api)
	return &s, nil
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  s.AllowOrigins,
			ExposeHeaders: []string{HeaderSessionID},
		}))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

// handleError maps application errors to HTTP statuses. Server side
// failures are logged and reported to Sentry with a generic message.
func (s *Server) handleError(err error, c echo.Context) {
	status := httpStatus(err)
	message := errs.ErrorMessage(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message = fmt.Sprint(he.Message)
	} else if status == http.StatusInternalServerError {
		message = internalMessage
	}

	if status >= http.StatusInternalServerError {
		s.Logger.Errorw(err.Error(), "request_id", s.requestID(c), "path", c.Path())
		sentry.WithContext(c).
			WithTag("session", c.Response().Header().Get(HeaderSessionID)).
			WithTag("request_id", s.requestID(c)).
			WithExtra("path", c.Path()).
			Error(err)
	}

	// Don't write response if already committed
	if c.Response().Committed {
		return
	}
	if err := writeError(c, status, message, "", err); err != nil {
		s.Logger.Errorw("cannot write error response", "error", err)
	}
}

func (s *Server) requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	return c.Validate(req)
}

func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
