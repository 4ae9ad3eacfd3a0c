package credstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSubject returns the subject claim of a JWT access token without
// verifying its signature. The backend is the authority on token validity;
// this is only used to backfill the user id after login. Returns "" for
// opaque or malformed tokens.
func TokenSubject(raw string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// TokenExpiry returns the expiry claim of a JWT access token without
// verifying its signature. ok is false for opaque or malformed tokens and
// for tokens that carry no exp claim.
func TokenExpiry(raw string) (expiry time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
