package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"moviehub/pkg/jwt"
	"moviehub/pkg/kv"
	"moviehub/pkg/logger"
	"moviehub/user"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// StorageKey is where the session lives in local storage.
const StorageKey = "auth-storage"

// Session is the persisted sign-in state.
type Session struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// SessionStore holds the current session and mirrors it to storage. It is
// the bearer token source of the API clients.
type SessionStore struct {
	storage kv.Store
	log     *zap.SugaredLogger
	now     func() time.Time

	mu      sync.RWMutex
	session Session
}

func NewSessionStore(ctx context.Context, storage kv.Store, log *zap.SugaredLogger) *SessionStore {
	if log == nil {
		log = logger.NOOPLogger
	}
	s := &SessionStore{
		storage: storage,
		log:     log,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	s.restore(ctx)
	return s
}

func (s *SessionStore) restore(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warnw("cannot read session from storage", "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.log.Warnw("corrupt session payload", "error", err)
		return
	}
	s.session = session
}

func (s *SessionStore) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *SessionStore) Save(ctx context.Context, session Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	payload, err := json.Marshal(session)
	if err != nil {
		s.log.Warnw("cannot encode session", "error", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, string(payload)); err != nil {
		s.log.Warnw("cannot write session to storage", "error", err)
	}
}

// SetUser replaces the user of the current session and keeps the token.
func (s *SessionStore) SetUser(ctx context.Context, u user.User) {
	session := s.Session()
	session.User = &u
	s.Save(ctx, session)
}

func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, StorageKey); err != nil {
		s.log.Warnw("cannot clear session", "error", err)
	}
}

// IsAuthenticated reports whether a token is held and, for JWTs, not expired.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	token := s.session.Token
	s.mu.RUnlock()

	if token == "" {
		return false
	}
	claims, err := jwt.Inspect(token)
	if err != nil {
		return true
	}
	return !claims.Expired(s.now())
}

// Token implements oauth2.TokenSource.
func (s *SessionStore) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	token := s.session.Token
	s.mu.RUnlock()

	if token == "" {
		return nil, ErrNotAuthenticated
	}
	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if claims, err := jwt.Inspect(token); err == nil {
		t.Expiry = claims.ExpiresAt
	}
	return t, nil
}
