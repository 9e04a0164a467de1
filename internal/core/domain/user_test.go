package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		user, err := domain.NewUser(domain.UserParams{
			Email:    "Barista@Cafeflow.dev",
			Password: "Secret123!",
			Role:     domain.RoleStaff,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "barista@cafeflow.dev", user.Email)
		assert.True(t, user.CheckPassword("Secret123!"))
		assert.False(t, user.CheckPassword("Secret123"))
		assert.Nil(t, user.RefreshTokenHash)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := domain.NewUser(domain.UserParams{Email: "not-an-email", Password: "Secret123!", Role: domain.RoleStaff})
		assert.ErrorIs(t, err, apperrors.ErrEmailInvalid)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := domain.NewUser(domain.UserParams{Email: "a@b.dev", Password: "abc", Role: domain.RoleStaff})
		assert.ErrorIs(t, err, apperrors.ErrPasswordRequired)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := domain.NewUser(domain.UserParams{Email: "a@b.dev", Password: "Secret123!", Role: "customer"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
	})
}

func TestUser_CheckRefreshToken(t *testing.T) {
	// Signed JWTs are well past bcrypt's 72 byte input limit; hashing must
	// still round trip.
	token := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 10)

	hash, err := domain.HashRefreshToken(token)
	require.NoError(t, err)

	user := &domain.User{RefreshTokenHash: &hash}
	assert.True(t, user.CheckRefreshToken(token))
	assert.False(t, user.CheckRefreshToken(token+"x"))

	user.RefreshTokenHash = nil
	assert.False(t, user.CheckRefreshToken(token))
}

func TestRole_IsStaff(t *testing.T) {
	assert.True(t, domain.RoleAdmin.IsStaff())
	assert.True(t, domain.RoleStaff.IsStaff())
	assert.False(t, domain.Role("customer").IsStaff())
	assert.False(t, domain.Role("").IsStaff())
}
