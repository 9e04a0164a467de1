package domain

import (
	"crypto/sha256"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/cafeflow/backend/internal/core/errors"
)

// Password and field limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxEmailLength    = 255
)

// Role represents a verified account role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsStaff reports whether the role grants access to the staff queue.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleStaff
}

// IsValid reports whether the role is a recognized account role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is a staff or admin account. Customers are anonymous and have no
// user record.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Role             Role
	RefreshTokenHash *string
	CreatedAt        time.Time
}

// UserParams holds the fields accepted when creating a user.
type UserParams struct {
	Email    string
	Password string
	Role     Role
}

// Validate validates user creation parameters.
func (p *UserParams) Validate() error {
	if p.Email == "" {
		return apperrors.ErrEmailRequired
	}
	if len(p.Email) > MaxEmailLength || !isValidEmail(p.Email) {
		return apperrors.ErrEmailInvalid
	}
	if p.Password == "" {
		return apperrors.ErrPasswordRequired
	}
	if len(p.Password) < MinPasswordLength || len(p.Password) > MaxPasswordLength {
		return apperrors.ErrPasswordRequired
	}
	if !p.Role.IsValid() {
		return apperrors.ErrInvalidRole
	}
	return nil
}

// NewUser creates a new user with validated parameters.
func NewUser(params UserParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(params.Email),
		PasswordHash: hash,
		Role:         params.Role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword verifies if the provided password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CheckRefreshToken verifies a presented refresh token against the stored hash.
func (u *User) CheckRefreshToken(token string) bool {
	if u.RefreshTokenHash == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.RefreshTokenHash), digestToken(token))
	return err == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// HashRefreshToken hashes a refresh token for at-rest storage. Tokens are
// digested first because bcrypt rejects inputs longer than 72 bytes and
// signed tokens always exceed that.
func HashRefreshToken(token string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(digestToken(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func digestToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// isValidEmail validates email format
func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
