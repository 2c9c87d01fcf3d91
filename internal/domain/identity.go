package domain

import "time"

// Identity is the authenticated caller as resolved from a bearer token.
// The zero value is an anonymous caller.
type Identity struct {
	UserID string
	Role   Role
}

// Anonymous reports whether no user was resolved.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller it was issued for.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
