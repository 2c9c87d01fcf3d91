package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Role is the application role of a user.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleOrganizer Role = "Organizer"
	RoleGuest     Role = "Guest"
)

// ParseRole maps a role name case-insensitively; unknown or empty names are Guest.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "organizer":
		return RoleOrganizer
	default:
		return RoleGuest
	}
}

// CanOrganize reports whether the role may create events.
func (r Role) CanOrganize() bool {
	return r == RoleAdmin || r == RoleOrganizer
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Age          int       `json:"age"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email string, age int, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		Age:       age,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// UserChanges holds optional profile updates; nil fields are unchanged.
type UserChanges struct {
	Name  *string
	Email *string
	Age   *int
	Role  *Role
}

// SignUpInput is the data required to create an account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Role     string
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// AuthService handles account creation and credential checks.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Verify(ctx context.Context, caller Identity) (*User, error)
}

// UserService defines profile management operations.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, params PaginationParams, caller Identity) ([]*User, int, error)
	Update(ctx context.Context, id string, changes UserChanges, caller Identity) (*User, error)
	Delete(ctx context.Context, id string, caller Identity) error
}
