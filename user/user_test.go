package user_test

import (
	"strings"
	"testing"

	"moviehub/user"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationValidate(t *testing.T) {
	valid := user.Registration{
		Name:                 "Jane Doe",
		Email:                "jane@example.com",
		Password:             "correct-horse",
		PasswordConfirmation: "correct-horse",
	}

	t.Run("should accept a complete registration", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("should reject names outside 2..100 characters", func(t *testing.T) {
		r := valid
		r.Name = "J"
		assert.Equal(t, user.ErrInvalidName, r.Validate())

		r.Name = strings.Repeat("a", 101)
		assert.Equal(t, user.ErrInvalidName, r.Validate())
	})

	t.Run("should reject a malformed email", func(t *testing.T) {
		r := valid
		r.Email = "jane@localhost"
		assert.Equal(t, user.ErrInvalidEmail, r.Validate())
	})

	t.Run("should reject short passwords", func(t *testing.T) {
		r := valid
		r.Password, r.PasswordConfirmation = "short", "short"
		assert.Equal(t, user.ErrInvalidPassword, r.Validate())
	})

	t.Run("should reject a mismatched confirmation", func(t *testing.T) {
		r := valid
		r.PasswordConfirmation = "correct-horsf"
		assert.Equal(t, user.ErrPasswordMismatch, r.Validate())
	})
}

func TestCredentialsValidate(t *testing.T) {
	t.Run("should need an email and a password", func(t *testing.T) {
		assert.NoError(t, user.Credentials{Email: "a@b.co", Password: "x"}.Validate())
		assert.Equal(t, user.ErrInvalidEmail, user.Credentials{Email: "", Password: "x"}.Validate())
		assert.Equal(t, user.ErrInvalidPassword, user.Credentials{Email: "a@b.co", Password: " "}.Validate())
	})
}

func TestProfileUpdateValidate(t *testing.T) {
	t.Run("should need at least one field", func(t *testing.T) {
		assert.Equal(t, user.ErrEmptyProfileUpdate, user.ProfileUpdate{}.Validate())
	})

	t.Run("should validate only the fields that are set", func(t *testing.T) {
		assert.NoError(t, user.ProfileUpdate{Name: "Jo"}.Validate())
		assert.NoError(t, user.ProfileUpdate{Email: "jo@example.org"}.Validate())
		assert.Equal(t, user.ErrInvalidEmail, user.ProfileUpdate{Name: "Jo", Email: "nope"}.Validate())
	})
}

func TestPasswordChangeValidate(t *testing.T) {
	t.Run("should need the current password", func(t *testing.T) {
		p := user.PasswordChange{NewPassword: "longenough", NewPasswordConfirmation: "longenough"}
		assert.Equal(t, user.ErrCurrentPasswordRequired, p.Validate())

		p.CurrentPassword = "old-secret"
		assert.NoError(t, p.Validate())
	})
}

func TestPasswordResetValidate(t *testing.T) {
	t.Run("should need a token", func(t *testing.T) {
		p := user.PasswordReset{Email: "a@b.co", Password: "longenough", PasswordConfirmation: "longenough"}
		assert.Equal(t, user.ErrResetTokenRequired, p.Validate())

		p.Token = "reset-token"
		assert.NoError(t, p.Validate())
	})
}
