package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/session"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims session.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestVerifyMapsClaimsToSession(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(time.Hour)
	raw := signToken(t, jwt.SigningMethodHS256, testSecret, session.Claims{
		Email: "alice@trusted.example",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	sess, err := session.NewJWTVerifier(testSecret).Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", sess.UserID)
	require.Equal(t, "alice@trusted.example", sess.Email)
	require.True(t, sess.IssuedAt.Equal(issued))
	require.True(t, sess.ExpiresAt.Equal(expires))
	require.False(t, sess.Expired(time.Now()))
}

func TestVerifyExpiredToken(t *testing.T) {
	raw := signToken(t, jwt.SigningMethodHS256, testSecret, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := session.NewJWTVerifier(testSecret).Verify(context.Background(), raw)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw := signToken(t, jwt.SigningMethodHS256, "some-other-secret", session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	_, err := session.NewJWTVerifier(testSecret).Verify(context.Background(), raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	raw := signToken(t, jwt.SigningMethodHS256, testSecret, session.Claims{
		Email: "alice@trusted.example",
	})

	_, err := session.NewJWTVerifier(testSecret).Verify(context.Background(), raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := session.NewJWTVerifier(testSecret).Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
