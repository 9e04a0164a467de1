package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/mocks"
	"github.com/cafeflow/backend/internal/core/services"
)

func TestMenuService_ListAvailable(t *testing.T) {
	ctx := context.Background()

	items := []domain.MenuItem{
		{ID: "mi-1", Name: "Espresso", PriceCents: 300, IsAvailable: true},
	}

	t.Run("cache hit skips repository", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()
		mockCache := mocks.NewMockMenuCache()

		svc := services.NewMenuService(mockRepo, mockCache, testLogger())

		mockCache.On("Get", ctx).Return(items, true)

		got, err := svc.ListAvailable(ctx)

		require.NoError(t, err)
		assert.Equal(t, items, got)
		mockRepo.AssertNotCalled(t, "ListAvailable")
	})

	t.Run("cache miss reads repository and fills cache", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()
		mockCache := mocks.NewMockMenuCache()

		svc := services.NewMenuService(mockRepo, mockCache, testLogger())

		mockCache.On("Get", ctx).Return(nil, false)
		mockRepo.On("ListAvailable", ctx).Return(items, nil)
		mockCache.On("Set", ctx, items, mock.AnythingOfType("time.Duration")).Return()

		got, err := svc.ListAvailable(ctx)

		require.NoError(t, err)
		assert.Equal(t, items, got)
		mockCache.AssertExpectations(t)
	})

	t.Run("works without a cache", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()

		svc := services.NewMenuService(mockRepo, nil, testLogger())

		mockRepo.On("ListAvailable", ctx).Return(items, nil)

		got, err := svc.ListAvailable(ctx)

		require.NoError(t, err)
		assert.Equal(t, items, got)
	})
}

func TestMenuService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates cache", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()
		mockCache := mocks.NewMockMenuCache()

		svc := services.NewMenuService(mockRepo, mockCache, testLogger())

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.MenuItem")).Return(nil)
		mockCache.On("Invalidate", ctx).Return()

		item, err := svc.CreateItem(ctx, domain.MenuItemParams{
			Name:        "Flat White",
			PriceCents:  420,
			IsAvailable: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Flat White", item.Name)
		assert.Equal(t, domain.DefaultCategory, item.Category)
		mockCache.AssertExpectations(t)
	})

	t.Run("rejects short name", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()

		svc := services.NewMenuService(mockRepo, nil, testLogger())

		item, err := svc.CreateItem(ctx, domain.MenuItemParams{Name: "X", PriceCents: 100})

		assert.Nil(t, item)
		assert.ErrorIs(t, err, apperrors.ErrNameRequired)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects negative price", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()

		svc := services.NewMenuService(mockRepo, nil, testLogger())

		item, err := svc.CreateItem(ctx, domain.MenuItemParams{Name: "Mocha", PriceCents: -1})

		assert.Nil(t, item)
		assert.ErrorIs(t, err, apperrors.ErrNegativePrice)
	})
}

func TestMenuService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	existing := &domain.MenuItem{
		ID:          "mi-1",
		Name:        "Espresso",
		Category:    "Coffee",
		PriceCents:  300,
		IsAvailable: true,
	}

	t.Run("success applies fields and invalidates cache", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()
		mockCache := mocks.NewMockMenuCache()

		svc := services.NewMenuService(mockRepo, mockCache, testLogger())

		item := *existing
		mockRepo.On("GetByID", ctx, "mi-1").Return(&item, nil)
		mockRepo.On("Update", ctx, &item).Return(&item, nil)
		mockCache.On("Invalidate", ctx).Return()

		updated, err := svc.UpdateItem(ctx, "mi-1", domain.MenuItemParams{
			Name:        "Double Espresso",
			Category:    "Coffee",
			PriceCents:  380,
			IsAvailable: false,
		})

		require.NoError(t, err)
		assert.Equal(t, "Double Espresso", updated.Name)
		assert.Equal(t, int64(380), updated.PriceCents)
		assert.False(t, updated.IsAvailable)
		mockCache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := mocks.NewMockMenuItemRepository()

		svc := services.NewMenuService(mockRepo, nil, testLogger())

		mockRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrMenuItemNotFound)

		updated, err := svc.UpdateItem(ctx, "missing", domain.MenuItemParams{
			Name:       "Mocha",
			PriceCents: 100,
		})

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, apperrors.ErrMenuItemNotFound)
	})
}

func TestMenuService_DeleteItem(t *testing.T) {
	ctx := context.Background()

	mockRepo := mocks.NewMockMenuItemRepository()
	mockCache := mocks.NewMockMenuCache()

	svc := services.NewMenuService(mockRepo, mockCache, testLogger())

	mockRepo.On("Delete", ctx, "mi-1").Return(nil)
	mockCache.On("Invalidate", ctx).Return()

	err := svc.DeleteItem(ctx, "mi-1")

	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}
