package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"navexpo/internal/domain"
)

var errMissingSubject = errors.New("token has no subject")

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

type jwtTokens struct {
	secret []byte
	issuer string
}

// JWT signs and verifies HS256 tokens carrying the user id and role.
type JWT interface {
	domain.TokenIssuer
	domain.TokenVerifier
}

// NewJWT returns a token issuer and verifier sharing secret. issuer is written to
// and required in the iss claim.
func NewJWT(secret, issuer string) JWT {
	return &jwtTokens{secret: []byte(secret), issuer: issuer}
}

func (j *jwtTokens) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Role:  string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *jwtTokens) Verify(tokenString string) (domain.Identity, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, errMissingSubject
	}
	return domain.Identity{UserID: claims.Subject, Role: domain.ParseRole(claims.Role)}, nil
}
