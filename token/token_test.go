package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/token"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234567890abcdef1234567890abcdef"

func TestInspector_ValidToken(t *testing.T) {
	signer := token.NewHMACSigner(secretStr)
	raw, err := token.NewCreator(signer, time.Hour).CreateAccessToken("ada", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	got, err := token.NewInspector(signer).Inspect(raw)
	require.NoError(t, err)
	require.True(t, got.Active)
	require.True(t, got.Verified)
	require.False(t, got.Expired)
	require.Equal(t, "ada", got.Subject)
	require.Equal(t, []string{"ROLE_ADMIN"}, got.Roles)
	require.NotEmpty(t, got.ID)
	require.NotNil(t, got.ExpiresAt)
}

func TestInspector_BearerPrefixAndEmpty(t *testing.T) {
	signer := token.NewHMACSigner(secretStr)
	raw, err := token.NewCreator(signer, time.Hour).CreateAccessToken("ada", nil)
	require.NoError(t, err)

	got, err := token.NewInspector(signer).Inspect("Bearer " + raw)
	require.NoError(t, err)
	require.True(t, got.Active)

	empty, err := token.NewInspector(signer).Inspect("  ")
	require.NoError(t, err)
	require.False(t, empty.Active)
}

func TestInspector_WrongSecret(t *testing.T) {
	raw, err := token.NewCreator(token.NewHMACSigner("other-secret"), time.Hour).CreateAccessToken("ada", nil)
	require.NoError(t, err)

	got, err := token.NewInspector(token.NewHMACSigner(secretStr)).Inspect(raw)
	require.ErrorIs(t, err, inverrors.ErrInvalidToken)
	require.False(t, got.Active)
}

func TestInspector_Garbage(t *testing.T) {
	got, err := token.NewInspector(nil).Inspect("not-a-jwt")
	require.ErrorIs(t, err, inverrors.ErrInvalidToken)
	require.False(t, got.Active)
}

func TestInspector_ExpiredIsReportedNotRejected(t *testing.T) {
	defer func(orig func() time.Time) { token.NowTimeFunc = orig }(token.NowTimeFunc)

	signer := token.NewHMACSigner(secretStr)
	token.NowTimeFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := token.NewCreator(signer, time.Hour).CreateAccessToken("ada", nil)
	require.NoError(t, err)
	token.NowTimeFunc = time.Now

	got, err := token.NewInspector(signer).Inspect(raw)
	require.NoError(t, err)
	require.True(t, got.Active)
	require.True(t, got.Expired)
}

func TestInspector_HS512AndUnverified(t *testing.T) {
	signer := token.NewHMACSigner(secretStr).WithMethod(jwtlib.SigningMethodHS512)
	raw, err := signer.Sign(jwtlib.MapClaims{"sub": "sam", "authorities": []string{"ROLE_SALES"}})
	require.NoError(t, err)

	got, err := token.NewInspector(token.NewHMACSigner(secretStr)).Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"ROLE_SALES"}, got.Roles)

	unverified, err := token.NewInspector(nil).Inspect(raw)
	require.NoError(t, err)
	require.True(t, unverified.Active)
	require.False(t, unverified.Verified)
	require.Equal(t, "sam", unverified.Subject)
}
