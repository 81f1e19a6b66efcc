package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"moviehub/errs"
	"moviehub/pkg/logger"
	"moviehub/user"

	"go.uber.org/zap"
)

const (
	MsgResendVerificationFailed = "Failed to resend verification email"
	MsgVerifyEmailFailed        = "Email verification failed"
)

var (
	ErrNotAuthenticated = errs.Errorf(errs.EUNAUTHORIZED, "not authenticated")
	ErrNoToken          = errs.Errorf(errs.EPROTOCOL, "login response did not include a token")
	ErrNoVerifyLink     = errs.Errorf(errs.EINVALID, "Verification link is required")
)

type Service interface {
	Login(ctx context.Context, c user.Credentials) (user.User, error)
	Register(ctx context.Context, r user.Registration) (user.User, error)
	Logout(ctx context.Context)
	CheckAuth(ctx context.Context) error
	UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, error)
	ChangePassword(ctx context.Context, p user.PasswordChange) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, p user.PasswordReset) error
	ResendVerification(ctx context.Context) error
	VerifyEmail(ctx context.Context, link string) error
	ClearSession(ctx context.Context)
	IsAuthenticated() bool
	CurrentUser() (user.User, bool)
	NeedsPasswordChange() bool
}

// Grant is a successful login or registration.
type Grant struct {
	User                user.User
	Token               string
	NeedsPasswordChange bool
}

// API is the account endpoint of the movie backend.
type API interface {
	Login(ctx context.Context, c user.Credentials) (Grant, error)
	Register(ctx context.Context, r user.Registration) (Grant, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (user.User, error)
	UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, error)
	ChangePassword(ctx context.Context, p user.PasswordChange) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, p user.PasswordReset) error
	ResendVerification(ctx context.Context) error
	VerifyEmail(ctx context.Context, link string) error
}

type Usecase struct {
	api      API
	sessions *SessionStore
	log      *zap.SugaredLogger

	needsPasswordChange atomic.Bool
}

func NewUsecase(api API, sessions *SessionStore, log *zap.SugaredLogger) *Usecase {
	if log == nil {
		log = logger.NOOPLogger
	}
	return &Usecase{
		api:      api,
		sessions: sessions,
		log:      log,
	}
}

func (uc *Usecase) Login(ctx context.Context, c user.Credentials) (user.User, error) {
	if err := c.Validate(); err != nil {
		return user.User{}, err
	}
	g, err := uc.api.Login(ctx, c)
	if err != nil {
		return user.User{}, err
	}
	return uc.grant(ctx, g)
}

func (uc *Usecase) Register(ctx context.Context, r user.Registration) (user.User, error) {
	if err := r.Validate(); err != nil {
		return user.User{}, err
	}
	g, err := uc.api.Register(ctx, r)
	if err != nil {
		return user.User{}, err
	}
	return uc.grant(ctx, g)
}

func (uc *Usecase) grant(ctx context.Context, g Grant) (user.User, error) {
	if g.Token == "" {
		return user.User{}, ErrNoToken
	}
	u := g.User
	uc.sessions.Save(ctx, Session{User: &u, Token: g.Token})
	uc.needsPasswordChange.Store(g.NeedsPasswordChange || u.NeedsPasswordChange)
	return u, nil
}

// Logout tells the backend when a token is held, then always drops the local session.
func (uc *Usecase) Logout(ctx context.Context) {
	if uc.sessions.Session().Token != "" {
		if err := uc.api.Logout(ctx); err != nil {
			uc.log.Warnw("logout request failed", "error", err)
		}
	}
	uc.ClearSession(ctx)
}

// CheckAuth refreshes the user from the backend. A rejected token clears the session.
func (uc *Usecase) CheckAuth(ctx context.Context) error {
	if uc.sessions.Session().Token == "" {
		return nil
	}
	u, err := uc.api.Me(ctx)
	if err != nil {
		uc.log.Infow("session is no longer valid", "error", err)
		uc.ClearSession(ctx)
		return err
	}
	uc.sessions.SetUser(ctx, u)
	return nil
}

func (uc *Usecase) UpdateProfile(ctx context.Context, p user.ProfileUpdate) (user.User, error) {
	if !uc.IsAuthenticated() {
		return user.User{}, ErrNotAuthenticated
	}
	if err := p.Validate(); err != nil {
		return user.User{}, err
	}
	u, err := uc.api.UpdateProfile(ctx, p)
	if err != nil {
		return user.User{}, err
	}
	uc.sessions.SetUser(ctx, u)
	return u, nil
}

func (uc *Usecase) ChangePassword(ctx context.Context, p user.PasswordChange) error {
	if !uc.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := uc.api.ChangePassword(ctx, p); err != nil {
		return err
	}
	uc.needsPasswordChange.Store(false)
	return nil
}

func (uc *Usecase) ForgotPassword(ctx context.Context, email string) error {
	if err := user.ValidateEmail(email); err != nil {
		return err
	}
	return uc.api.ForgotPassword(ctx, email)
}

func (uc *Usecase) ResetPassword(ctx context.Context, p user.PasswordReset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return uc.api.ResetPassword(ctx, p)
}

// ResendVerification mails a new verification link to the logged in user.
func (uc *Usecase) ResendVerification(ctx context.Context) error {
	if !uc.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := uc.api.ResendVerification(ctx); err != nil {
		return withMessage(err, MsgResendVerificationFailed)
	}
	return nil
}

// VerifyEmail confirms the address with the link from the verification
// email and, when logged in, reloads the user to pick up the new state.
func (uc *Usecase) VerifyEmail(ctx context.Context, link string) error {
	if strings.TrimSpace(link) == "" {
		return ErrNoVerifyLink
	}
	if err := uc.api.VerifyEmail(ctx, link); err != nil {
		return withMessage(err, MsgVerifyEmailFailed)
	}
	if !uc.IsAuthenticated() {
		return nil
	}
	u, err := uc.api.Me(ctx)
	if err != nil {
		uc.log.Warnw("cannot reload user after verification", "error", err)
		return nil
	}
	uc.sessions.SetUser(ctx, u)
	return nil
}

func (uc *Usecase) ClearSession(ctx context.Context) {
	uc.sessions.Clear(ctx)
	uc.needsPasswordChange.Store(false)
}

func (uc *Usecase) IsAuthenticated() bool {
	return uc.sessions.IsAuthenticated()
}

func (uc *Usecase) CurrentUser() (user.User, bool) {
	s := uc.sessions.Session()
	if s.User == nil || !uc.IsAuthenticated() {
		return user.User{}, false
	}
	return *s.User, true
}

func (uc *Usecase) NeedsPasswordChange() bool {
	return uc.needsPasswordChange.Load()
}

// withMessage gives err a user facing message when it carries none.
func withMessage(err error, msg string) error {
	var e *errs.Error
	if errors.As(err, &e) && e.Message != "" {
		return err
	}
	return errs.Wrap(errs.ErrorCode(err), err, msg)
}
