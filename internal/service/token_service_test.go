package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "teacher-1",
		Role:   models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "school-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Issuer: "school-idp"})

	claims, err := svc.ValidateToken(signToken(t, "secret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenServiceFallsBackToSubject(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret"})
	claims := validClaims()
	claims.UserID = ""
	claims.Subject = "stu-7"

	parsed, err := svc.ValidateToken(signToken(t, "secret", claims))
	require.NoError(t, err)
	assert.Equal(t, "stu-7", parsed.UserID)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Issuer: "school-idp"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	badRole := validClaims()
	badRole.Role = "JANITOR"

	cases := map[string]string{
		"wrong secret": signToken(t, "other", validClaims()),
		"expired":      signToken(t, "secret", expired),
		"wrong issuer": signToken(t, "secret", wrongIssuer),
		"unknown role": signToken(t, "secret", badRole),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}
