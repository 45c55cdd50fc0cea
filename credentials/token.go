package credentials

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
)

// TokenInfo is what can be read from an access token without verifying it.
// None of it may be used for authorisation.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the claims of a JWT access token without verifying its
// signature. Opaque tokens return an error.
func InspectToken(token string) (TokenInfo, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, err
	}

	var info TokenInfo
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	return info, nil
}

// Expiry returns when the bundle stops being valid: tokenExpiry when the host
// supplied one, otherwise the exp claim of a JWT access token. The zero time
// means unknown.
func Expiry(c *hostdata.APICredentials) time.Time {
	if c == nil {
		return time.Time{}
	}
	if c.TokenExpiry != "" {
		if t, err := time.Parse(time.RFC3339, c.TokenExpiry); err == nil {
			return t
		}
	}
	info, err := InspectToken(c.AccessToken)
	if err != nil {
		return time.Time{}
	}
	return info.ExpiresAt
}

// Expired reports whether the bundle is known to have expired at now. Bundles
// with an unknown expiry are taken at face value.
func Expired(c *hostdata.APICredentials, now time.Time) bool {
	expiry := Expiry(c)
	if expiry.IsZero() {
		return false
	}
	return !now.Before(expiry)
}
