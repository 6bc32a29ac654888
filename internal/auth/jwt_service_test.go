package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bugtrack/internal/model"
)

func TestJWTService_GenerateAndVerify(t *testing.T) {
	service := NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), Username: "testuser", Email: "test@example.com"}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := service.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestJWTService_VerifyRejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("test-secret")
	verifier := NewJWTService("other-secret")
	user := &model.User{ID: uuid.New()}

	token, err := issuer.GenerateToken(user)
	assert.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_VerifyRejectsExpired(t *testing.T) {
	service := NewJWTService("test-secret")

	// Sign a token that expired an hour ago with the same secret.
	claims := &Claims{
		UserID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_VerifyRejectsMalformed(t *testing.T) {
	service := NewJWTService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "wrong segment count", token: "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_VerifyRejectsNonUUIDSubject(t *testing.T) {
	service := NewJWTService("test-secret")

	claims := &Claims{
		UserID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
