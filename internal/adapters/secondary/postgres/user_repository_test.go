package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

func newUserRepo(t *testing.T) ports.UserRepository {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return NewUserRepository(testPool)
}

func seedUser(t *testing.T, repo ports.UserRepository, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(domain.UserParams{
		Email:    fmt.Sprintf("%s@cafeflow.dev", uuid.NewString()),
		Password: "Secret123!",
		Role:     role,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	user := seedUser(t, repo, domain.RoleStaff)

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.Email, found.Email)
	assert.Equal(t, domain.RoleStaff, found.Role)
	assert.Nil(t, found.RefreshTokenHash)
	assert.True(t, found.CheckPassword("Secret123!"))
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	user := seedUser(t, repo, domain.RoleAdmin)

	// Lookups are case insensitive.
	found, err := repo.GetByEmail(ctx, strings.ToUpper(user.Email))
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nobody@cafeflow.dev")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_UpdateRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	user := seedUser(t, repo, domain.RoleStaff)

	hash, err := domain.HashRefreshToken("some-refresh-token")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRefreshTokenHash(ctx, user.ID, &hash))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RefreshTokenHash)
	assert.True(t, found.CheckRefreshToken("some-refresh-token"))

	// Logout clears the stored hash.
	require.NoError(t, repo.UpdateRefreshTokenHash(ctx, user.ID, nil))

	found, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found.RefreshTokenHash)
}

func TestUserRepository_UpdateRefreshTokenHash_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	err := repo.UpdateRefreshTokenHash(ctx, "00000000-0000-0000-0000-000000000000", nil)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
