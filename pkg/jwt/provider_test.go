package jwt_test

import (
	"testing"
	"time"

	"moviehub/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("should read the expiry without the signing key", func(t *testing.T) {
		token := sign(t, gojwt.MapClaims{"sub": "42", "exp": now.Add(time.Hour).Unix()})

		c, err := jwt.Inspect(token)

		require.NoError(t, err)
		assert.Equal(t, "42", c.Subject)
		assert.Equal(t, now.Add(time.Hour), c.ExpiresAt)
		assert.False(t, c.Expired(now))
		assert.True(t, c.Expired(now.Add(2*time.Hour)))
	})

	t.Run("should treat a token without exp as never expiring", func(t *testing.T) {
		c, err := jwt.Inspect(sign(t, gojwt.MapClaims{"sub": "1"}))

		require.NoError(t, err)
		assert.False(t, c.HasExpiry())
		assert.False(t, c.Expired(now))
	})

	t.Run("should reject opaque tokens", func(t *testing.T) {
		for _, token := range []string{"1|abcdef", "", "a.b.c"} {
			_, err := jwt.Inspect(token)
			assert.ErrorIs(t, err, jwt.ErrNotJWT, "token %q", token)
		}
	})
}
