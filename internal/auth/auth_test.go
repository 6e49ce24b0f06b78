package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "farmverify/internal/errors"
	"farmverify/internal/model"
)

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("farmer123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "farmer123", hash)
	assert.True(t, VerifyPassword(hash, "farmer123"))
	assert.False(t, VerifyPassword(hash, "farmer124"))
	assert.False(t, VerifyPassword("not-a-hash", "farmer123"))

	again, err := HashPassword("farmer123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "each hash carries its own salt")
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")
	identity := Identity{UserID: uuid.New(), Email: "john.kamau@example.com", Role: model.RoleFarmer}

	token, err := svc.Issue(identity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTokenExpiry), token.ExpiresAt, time.Minute)

	got, err := svc.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, identity, *got)
	assert.False(t, got.IsAdmin())
}

func TestJWTService_VerifyRejects(t *testing.T) {
	svc := NewJWTService("test-secret")
	identity := Identity{UserID: uuid.New(), Email: "admin@tradecare.com", Role: model.RoleAdmin}

	valid, err := svc.Issue(identity)
	require.NoError(t, err)

	expired := NewJWTService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expiredToken, err := expired.Issue(identity)
	require.NoError(t, err)

	otherSecret, err := NewJWTService("other-secret").Issue(identity)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		ID:    identity.UserID.String(),
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		ID:    identity.UserID.String(),
		Email: identity.Email,
		Role:  "SUPERUSER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "tampered", token: valid.Value + "x"},
		{name: "expired", token: expiredToken.Value},
		{name: "wrong secret", token: otherSecret.Value},
		{name: "alg none", token: noneToken},
		{name: "unknown role", token: badRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(tt.token)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}
