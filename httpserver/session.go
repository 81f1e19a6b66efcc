package httpserver

import (
	"context"
	"sync"
	"time"

	"moviehub/app"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderSessionID carries the client session. Requests without a valid one
// get a fresh id in the response.
const HeaderSessionID = "X-Session-ID"

const sessionContextKey = "session"

// SessionFactory builds the usecases of a new session.
type SessionFactory func(ctx context.Context, id string) *app.Session

type sessionEntry struct {
	session *app.Session
	seen    time.Time
}

// Sessions keeps live sessions in memory. A session idle for longer than the
// ttl is dropped and rebuilt from storage on its next request.
type Sessions struct {
	factory SessionFactory
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func NewSessions(factory SessionFactory, ttl time.Duration) *Sessions {
	return &Sessions{
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// Get returns the session id, building it on first use.
func (r *Sessions) Get(ctx context.Context, id string) *app.Session {
	r.mu.Lock()
	now := r.now()
	if e, ok := r.entries[id]; ok {
		e.seen = now
		r.mu.Unlock()
		return e.session
	}
	r.mu.Unlock()

	s := r.factory(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.seen = now
		return e.session
	}
	r.sweep(now)
	r.entries[id] = &sessionEntry{session: s, seen: now}
	return s
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Sessions) sweep(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, e := range r.entries {
		if now.Sub(e.seen) > r.ttl {
			delete(r.entries, id)
		}
	}
}

func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(HeaderSessionID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Response().Header().Set(HeaderSessionID, id)
		c.Set(sessionContextKey, s.Sessions.Get(c.Request().Context(), id))
		return next(c)
	}
}

func sessionOf(c echo.Context) *app.Session {
	s, _ := c.Get(sessionContextKey).(*app.Session)
	return s
}
