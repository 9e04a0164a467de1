package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

// menuCacheTTL bounds staleness when an invalidation is lost.
const menuCacheTTL = 5 * time.Minute

// MenuService implements business logic for the menu catalog
type MenuService struct {
	menuRepo ports.MenuItemRepository
	cache    ports.MenuCache
	logger   *slog.Logger
}

var _ ports.MenuService = (*MenuService)(nil)

// NewMenuService creates a new menu service. The cache may be nil, in which
// case every read goes to the repository.
func NewMenuService(menuRepo ports.MenuItemRepository, cache ports.MenuCache, logger *slog.Logger) ports.MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		cache:    cache,
		logger:   logger,
	}
}

// ListAvailable returns the items guests can currently order.
func (s *MenuService) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx); ok {
			return items, nil
		}
	}

	items, err := s.menuRepo.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available menu items: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, items, menuCacheTTL)
	}

	return items, nil
}

// ListAll returns the full catalog, including unavailable items,
// for the admin view.
func (s *MenuService) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menuRepo.List(ctx)
}

// GetItem retrieves a single menu item by its ID.
func (s *MenuService) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.menuRepo.GetByID(ctx, id)
}

// CreateItem adds a new item to the catalog.
func (s *MenuService) CreateItem(ctx context.Context, params domain.MenuItemParams) (*domain.MenuItem, error) {
	item, err := domain.NewMenuItem(params)
	if err != nil {
		return nil, err
	}

	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.invalidate(ctx)
	return item, nil
}

// UpdateItem replaces the mutable fields of an existing item.
func (s *MenuService) UpdateItem(ctx context.Context, id string, params domain.MenuItemParams) (*domain.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.Apply(params); err != nil {
		return nil, err
	}

	updated, err := s.menuRepo.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.invalidate(ctx)
	return updated, nil
}

// DeleteItem removes an item from the catalog. Existing orders keep their
// snapshot of it.
func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
