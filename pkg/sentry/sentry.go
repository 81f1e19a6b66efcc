// Package sentry reports failed requests to Sentry.
package sentry

import (
	"strconv"
	"time"

	"moviehub/errs"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// FlushTime bounds how long Flush waits for buffered events.
var FlushTime = 2 * time.Second

// Init configures the global client. Reporting stays off for an empty dsn
// and in the local environment.
func Init(dsn, env string) error {
	if dsn == "" || env == "local" {
		return nil
	}
	return sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
	})
}

// Flush waits up to FlushTime for queued events.
func Flush() bool {
	return sentrygo.Flush(FlushTime)
}

// Report collects the scope of one event.
type Report struct {
	hub    *sentrygo.Hub
	level  sentrygo.Level
	tags   map[string]string
	extras map[string]interface{}
}

func New() *Report {
	return &Report{
		level:  sentrygo.LevelError,
		tags:   make(map[string]string),
		extras: make(map[string]interface{}),
	}
}

// WithContext reports through the request hub installed by the echo middleware.
func WithContext(c echo.Context) *Report {
	return New().WithContext(c)
}

func (r *Report) WithContext(c echo.Context) *Report {
	if c == nil {
		return r
	}
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		r.hub = hub
	}
	return r
}

func (r *Report) WithLevel(level sentrygo.Level) *Report {
	r.level = level
	return r
}

// WithTag ignores empty values.
func (r *Report) WithTag(key, value string) *Report {
	if value != "" {
		r.tags[key] = value
	}
	return r
}

func (r *Report) WithExtra(key string, value interface{}) *Report {
	r.extras[key] = value
	return r
}

// Error captures err tagged with its application code and, for failures
// that came from the movie API, the upstream status.
func (r *Report) Error(err error) *sentrygo.EventID {
	if err == nil {
		return nil
	}
	r.WithTag("error_code", errs.ErrorCode(err))
	if status := errs.ErrorStatus(err); status != 0 {
		r.WithTag("upstream_status", strconv.Itoa(status))
	}

	hub := r.hub
	if hub == nil {
		hub = sentrygo.CurrentHub()
	}
	var id *sentrygo.EventID
	hub.WithScope(func(scope *sentrygo.Scope) {
		scope.SetLevel(r.level)
		scope.SetTags(r.tags)
		if len(r.extras) > 0 {
			scope.SetExtras(r.extras)
		}
		id = hub.CaptureException(err)
	})
	return id
}

// Error reports err on the current hub.
func Error(err error) *sentrygo.EventID {
	return New().Error(err)
}
