package httpserver

import (
	"net/http"

	"moviehub/auth"
	"moviehub/user"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/login", s.handleLogin)
	g.POST("/auth/register", s.handleRegister)
	g.POST("/auth/logout", s.handleLogout)
	g.GET("/auth/me", s.handleMe)
	g.PUT("/auth/profile", s.handleUpdateProfile)
	g.POST("/auth/change-password", s.handleChangePassword)
	g.POST("/auth/forgot-password", s.handleForgotPassword)
	g.POST("/auth/reset-password", s.handleResetPassword)
	g.POST("/auth/email/verification-notification", s.handleResendVerification)
	g.POST("/auth/email/verify", s.handleVerifyEmail)
}

type AccountResponse struct {
	User                user.User `json:"user"`
	NeedsPasswordChange bool      `json:"needs_password_change"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	a := sessionOf(c).Auth
	u, err := a.Login(c.Request().Context(), req.ToCredentials())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, AccountResponse{User: u, NeedsPasswordChange: a.NeedsPasswordChange()})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	a := sessionOf(c).Auth
	u, err := a.Register(c.Request().Context(), req.ToRegistration())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusCreated, AccountResponse{User: u, NeedsPasswordChange: a.NeedsPasswordChange()})
}

func (s *Server) handleLogout(c echo.Context) error {
	sessionOf(c).Auth.Logout(c.Request().Context())
	return writeSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleMe(c echo.Context) error {
	a := sessionOf(c).Auth
	if err := a.CheckAuth(c.Request().Context()); err != nil {
		return err
	}
	u, ok := a.CurrentUser()
	if !ok {
		return auth.ErrNotAuthenticated
	}
	return writeSuccess(c, http.StatusOK, AccountResponse{User: u, NeedsPasswordChange: a.NeedsPasswordChange()})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := sessionOf(c).Auth.UpdateProfile(c.Request().Context(), req.ToProfileUpdate())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, u)
}

func (s *Server) handleChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := sessionOf(c).Auth.ChangePassword(c.Request().Context(), req.ToPasswordChange()); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := sessionOf(c).Auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := sessionOf(c).Auth.ResetPassword(c.Request().Context(), req.ToPasswordReset()); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleResendVerification(c echo.Context) error {
	if err := sessionOf(c).Auth.ResendVerification(c.Request().Context()); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, nil)
}

func (s *Server) handleVerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := sessionOf(c).Auth.VerifyEmail(c.Request().Context(), req.URL); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, nil)
}
