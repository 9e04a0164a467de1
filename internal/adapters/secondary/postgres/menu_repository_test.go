package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

func newMenuRepo(t *testing.T) ports.MenuItemRepository {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return NewMenuItemRepository(testPool)
}

func seedMenuItem(t *testing.T, repo ports.MenuItemRepository, name string, available bool) *domain.MenuItem {
	t.Helper()

	item, err := domain.NewMenuItem(domain.MenuItemParams{
		Name:        name,
		Description: "test item",
		Category:    "Coffee",
		PriceCents:  520,
		IsAvailable: available,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestMenuItemRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	item := seedMenuItem(t, repo, "Cortado", true)

	found, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, "Cortado", found.Name)
	assert.Equal(t, "Coffee", found.Category)
	assert.Equal(t, int64(520), found.PriceCents)
	assert.True(t, found.IsAvailable)
}

func TestMenuItemRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrMenuItemNotFound)
}

func TestMenuItemRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	first := seedMenuItem(t, repo, "Mocha", true)
	second := seedMenuItem(t, repo, "Chai Latte", true)

	items, err := repo.GetByIDs(ctx, []string{first.ID, second.ID, "00000000-0000-0000-0000-000000000000"})
	require.NoError(t, err)

	// Unknown IDs are simply absent from the result.
	require.Len(t, items, 2)
	ids := []string{items[0].ID, items[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestMenuItemRepository_ListAvailable(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	visible := seedMenuItem(t, repo, "Espresso", true)
	hidden := seedMenuItem(t, repo, "Seasonal Special", false)

	items, err := repo.ListAvailable(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(items))
	for _, item := range items {
		assert.True(t, item.IsAvailable)
		ids = append(ids, item.ID)
	}
	assert.Contains(t, ids, visible.ID)
	assert.NotContains(t, ids, hidden.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	allIDs := make([]string, 0, len(all))
	for _, item := range all {
		allIDs = append(allIDs, item.ID)
	}
	assert.Contains(t, allIDs, hidden.ID)
}

func TestMenuItemRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	item := seedMenuItem(t, repo, "Macchiato", true)

	require.NoError(t, item.Apply(domain.MenuItemParams{
		Name:        "Double Macchiato",
		Category:    "Coffee",
		PriceCents:  640,
		IsAvailable: false,
	}))

	updated, err := repo.Update(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "Double Macchiato", updated.Name)
	assert.Equal(t, int64(640), updated.PriceCents)
	assert.False(t, updated.IsAvailable)

	found, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Double Macchiato", found.Name)
}

func TestMenuItemRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	item, err := domain.NewMenuItem(domain.MenuItemParams{Name: "Ghost", PriceCents: 100, IsAvailable: true})
	require.NoError(t, err)

	_, err = repo.Update(ctx, item)
	assert.ErrorIs(t, err, apperrors.ErrMenuItemNotFound)
}

func TestMenuItemRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMenuRepo(t)

	item := seedMenuItem(t, repo, "Affogato", true)

	require.NoError(t, repo.Delete(ctx, item.ID))

	_, err := repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrMenuItemNotFound)

	err = repo.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, apperrors.ErrMenuItemNotFound)
}
