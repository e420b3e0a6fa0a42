// Package token inspects the access token cookie on the server side before a
// protected page is rendered. It checks structure and signature only; expiry is
// reported but not enforced, the backend decides that with a 401.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/internal/utils"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenIntrospection is what the front-end learns from an access token without
// asking the backend. Verified is false when no secret is configured.
type TokenIntrospection struct {
	Active    bool
	Verified  bool
	Expired   bool
	Subject   string
	Roles     []string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	ID        string
}

// Inspector handles access token inspection
type Inspector struct {
	signer Signer
}

// NewInspector creates an inspector. A nil signer inspects structure only.
func NewInspector(signer Signer) *Inspector {
	return &Inspector{signer: signer}
}

// Inspect parses rawToken. An empty token is inactive without error; a malformed or
// badly signed one is inactive with ErrInvalidToken.
func (i *Inspector) Inspect(rawToken string) (*TokenIntrospection, error) {
	rawToken = strings.TrimSpace(strings.TrimPrefix(rawToken, "Bearer "))
	if rawToken == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	var (
		token *jwtlib.Token
		err   error
	)
	verified := i.signer != nil
	if verified {
		token, err = jwtlib.NewParser(jwtlib.WithoutClaimsValidation()).ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey)
	} else {
		token, _, err = jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	}
	if err != nil {
		return &TokenIntrospection{Active: false}, inverrors.Mark(inverrors.ErrInvalidToken, err, "parse token")
	}
	if verified && !token.Valid {
		return &TokenIntrospection{Active: false}, inverrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return &TokenIntrospection{Active: false}, errors.Wrap(inverrors.ErrInvalidToken, "error extracting claims from token")
	}

	introspection := &TokenIntrospection{Active: true, Verified: verified}
	introspection.Subject, _ = claims["sub"].(string)
	introspection.ID, _ = claims["jti"].(string)
	introspection.Roles = claimRoles(claims)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		issued := iat.Time
		introspection.IssuedAt = &issued
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires := exp.Time
		introspection.ExpiresAt = &expires
		introspection.Expired = NowTimeFunc().After(expires)
	}
	return introspection, nil
}

// claimRoles reads "roles", falling back to "role" and to Spring's "authorities"
func claimRoles(claims jwtlib.MapClaims) []string {
	for _, name := range []string{"roles", "role", "authorities"} {
		if value, ok := claims[name]; ok {
			if roles := utils.ToStringSlice(value); len(roles) > 0 {
				return roles
			}
		}
	}
	return nil
}
