package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	sess := models.Session{UserID: "u1", OrgID: "org1"}

	token, exp, err := svc.GenerateAccessToken(sess)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	got, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestValidateAccessTokenRejects(t *testing.T) {
	svc := NewJWTService("secret")
	sess := models.Session{UserID: "u1", OrgID: "org1"}

	_, refresh, _, err := svc.GenerateTokenPair(sess)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	other, _, err := NewJWTService("other").GenerateAccessToken(sess)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService("secret")
	token, _, err := svc.GenerateToken(models.Session{UserID: "u1"}, models.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRejectsNonHMAC(t *testing.T) {
	claims := &models.TokenClaims{UserID: "u1", Type: models.TokenTypeAccess, Exp: time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("secret").ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	svc := NewJWTService("secret")
	sess := models.Session{UserID: "u1", OrgID: "org1"}
	access, refresh, _, err := svc.GenerateTokenPair(sess)
	require.NoError(t, err)

	_, _, err = svc.RefreshAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	fresh, _, err := svc.RefreshAccessToken(refresh)
	require.NoError(t, err)
	got, err := svc.ValidateAccessToken(fresh)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}
