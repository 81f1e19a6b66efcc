package user

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"moviehub/errs"
)

const (
	minNameLength     = 2
	maxNameLength     = 100
	minPasswordLength = 8
)

var (
	ErrInvalidName             = errs.Errorf(errs.EINVALID, "Name must be between 2 and 100 characters")
	ErrInvalidEmail            = errs.Errorf(errs.EINVALID, "Please enter a valid email address")
	ErrInvalidPassword         = errs.Errorf(errs.EINVALID, "Password must be at least 8 characters")
	ErrPasswordMismatch        = errs.Errorf(errs.EINVALID, "Passwords do not match")
	ErrCurrentPasswordRequired = errs.Errorf(errs.EINVALID, "Current password is required")
	ErrResetTokenRequired      = errs.Errorf(errs.EINVALID, "Reset token is required")
	ErrEmptyProfileUpdate      = errs.Errorf(errs.EINVALID, "Nothing to update")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the account as reported by the movie API.
type User struct {
	ID                  int64      `json:"id" yaml:"id"`
	Name                string     `json:"name" yaml:"name"`
	Email               string     `json:"email" yaml:"email"`
	EmailVerifiedAt     *time.Time `json:"email_verified_at,omitempty" yaml:"email_verified_at,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	NeedsPasswordChange bool       `json:"needs_password_change,omitempty" yaml:"needs_password_change,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	if strings.TrimSpace(c.Password) == "" {
		return ErrInvalidPassword
	}
	return nil
}

type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r Registration) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validateNewPassword(r.Password, r.PasswordConfirmation)
}

// ProfileUpdate changes the fields that are set.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (p ProfileUpdate) Validate() error {
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Email) == "" {
		return ErrEmptyProfileUpdate
	}
	if p.Name != "" {
		if err := validateName(p.Name); err != nil {
			return err
		}
	}
	if p.Email != "" {
		return validateEmail(p.Email)
	}
	return nil
}

type PasswordChange struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

func (p PasswordChange) Validate() error {
	if strings.TrimSpace(p.CurrentPassword) == "" {
		return ErrCurrentPasswordRequired
	}
	return validateNewPassword(p.NewPassword, p.NewPasswordConfirmation)
}

type PasswordReset struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (p PasswordReset) Validate() error {
	if strings.TrimSpace(p.Token) == "" {
		return ErrResetTokenRequired
	}
	if err := validateEmail(p.Email); err != nil {
		return err
	}
	return validateNewPassword(p.Password, p.PasswordConfirmation)
}

// ValidateEmail checks the shape of an address, as used by password recovery.
func ValidateEmail(email string) error {
	return validateEmail(email)
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minNameLength || n > maxNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

func validateNewPassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrInvalidPassword
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}
