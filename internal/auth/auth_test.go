package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarcare/inverter-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15*time.Minute)
	user := &domain.User{UserID: "u-1", EmailID: "a@b.com", Role: domain.RoleAdmin}

	session, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), session.ExpiresAt, 5*time.Second)

	claims, err := tm.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	user := &domain.User{UserID: "u-1", Role: domain.RoleCustomer}

	session, err := NewTokenManager("other", time.Minute).GenerateToken(user)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Minute).ParseToken(session.Token)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Minute).ParseToken(signed)
	assert.Error(t, err)
}

func TestTokenManagerDefaultsTTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewTokenManager("s", 0).TTL())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret1!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hash)

	assert.NoError(t, ComparePassword(hash, "Secret1!"))
	assert.ErrorIs(t, ComparePassword(hash, "secret1!"), ErrPasswordMismatch)
	assert.ErrorIs(t, ComparePassword("", "Secret1!"), ErrPasswordMismatch)
}
