package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.MapClaims) (string, error)

	// GetVerificationKey returns the key a token must verify against
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer with the shared AUTH_SECRET. The backend signs with
// HS256 or HS512 depending on its key length, so verification accepts any HMAC method.
type HMACSigner struct {
	secret []byte
	method jwt.SigningMethod
}

// NewHMACSigner creates a new HS256 signer with the given secret
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{
		secret: []byte(secret),
		method: jwt.SigningMethodHS256,
	}
}

// WithMethod returns a copy of the signer that signs with method
func (h *HMACSigner) WithMethod(method *jwt.SigningMethodHMAC) *HMACSigner {
	return &HMACSigner{secret: h.secret, method: method}
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(h.method, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return h.method
}
