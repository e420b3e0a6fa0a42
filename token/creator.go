package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Creator issues access tokens in the backend's format. The front-end never signs
// tokens in production; the in-memory backend used by tests and local runs does.
type Creator struct {
	signer Signer
	expiry time.Duration
}

func NewCreator(signer Signer, expiry time.Duration) *Creator {
	return &Creator{signer: signer, expiry: expiry}
}

// CreateAccessToken signs a token for subject carrying roles
func (c *Creator) CreateAccessToken(subject string, roles []string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":   subject,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(c.expiry).Unix(),
		"jti":   uuid.New().String(),
	}
	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// CreateRefreshToken returns an opaque refresh token
func (c *Creator) CreateRefreshToken() string {
	return uuid.New().String()
}
