// Package jwt reads the claims of bearer tokens issued by the movie API.
// Signatures are checked by the API, never here.
package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrNotJWT = errors.New("token is not a jwt")

type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the token carried an exp claim that is not after now.
func (c Claims) Expired(now time.Time) bool {
	return c.HasExpiry() && !c.ExpiresAt.After(now)
}

// Inspect decodes the standard claims of token without verifying it.
// Opaque tokens, such as personal access tokens, yield ErrNotJWT.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrNotJWT
	}

	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return Claims{}, ErrNotJWT
	}

	c := Claims{Subject: claims.Subject}
	if claims.ExpiresAt > 0 {
		c.ExpiresAt = time.Unix(claims.ExpiresAt, 0).UTC()
	}
	return c, nil
}
