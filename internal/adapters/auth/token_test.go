package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navexpo/internal/domain"
)

func TestJWT_IssueAndVerify(t *testing.T) {
	tokens := NewJWT("test-secret", "navexpo")

	token, err := tokens.Issue("user-123", "u@example.com", domain.RoleOrganizer, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "Organizer", claims.Role)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "user-123", Role: domain.RoleOrganizer}, id)
}

func TestJWT_VerifyRejects(t *testing.T) {
	tokens := NewJWT("test-secret", "navexpo")

	expired, err := tokens.Issue("user-1", "u@example.com", domain.RoleGuest, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewJWT("other-secret", "navexpo").Issue("user-1", "u@example.com", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWT("test-secret", "someone-else").Issue("user-1", "u@example.com", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "navexpo", Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "Admin",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "navexpo", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"alg none":     noneAlg,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.Error(t, err)
		})
	}
}
