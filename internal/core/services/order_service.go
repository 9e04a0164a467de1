package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

// RecentOrdersLimit caps the staff queue listing.
const RecentOrdersLimit int32 = 50

// OrderService implements business logic for placing and progressing orders
type OrderService struct {
	orderRepo   ports.OrderRepository
	menuRepo    ports.MenuItemRepository
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
}

var _ ports.OrderService = (*OrderService)(nil)

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo ports.OrderRepository,
	menuRepo ports.MenuItemRepository,
	broadcaster ports.EventBroadcaster,
	logger *slog.Logger,
) ports.OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		menuRepo:    menuRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// CreateOrder handles the use case for a guest placing a new order. Prices
// and names are snapshotted from the menu at creation time, so later menu
// edits never change an existing order.
func (s *OrderService) CreateOrder(ctx context.Context, params ports.CreateOrderParams) (*domain.Order, error) {
	if len(params.Items) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}

	// 1. Resolve the requested menu items.
	ids := make([]string, 0, len(params.Items))
	for _, item := range params.Items {
		ids = append(ids, item.MenuItemID)
	}
	menuItems, err := s.menuRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}

	byID := make(map[string]domain.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	// 2. Build the item snapshot. Unknown or unavailable items reject the
	// whole order.
	lines := make([]domain.OrderItem, 0, len(params.Items))
	for _, item := range params.Items {
		mi, ok := byID[item.MenuItemID]
		if !ok || !mi.IsAvailable {
			return nil, apperrors.ErrMenuItemUnavailable
		}
		lines = append(lines, domain.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			PriceCents: mi.PriceCents,
			Qty:        item.Qty,
		})
	}

	// 3. Create domain entity with validation
	order, err := domain.NewOrder(params.Table, params.Notes, lines)
	if err != nil {
		return nil, err
	}

	// 4. Persist the order
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// 5. Publish before returning so the staff queue sees the order no
	// later than the guest's confirmation.
	if err := s.broadcaster.Broadcast(domain.NewOrderCreatedEvent(order)); err != nil {
		s.logger.Error("failed to broadcast order created event",
			"order_id", order.ID,
			"error", err,
		)
	}

	return order, nil
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListRecent returns the most recent orders for the staff queue.
func (s *OrderService) ListRecent(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListRecent(ctx, RecentOrdersLimit)
}

// UpdateStatus progresses an order through its lifecycle and publishes the
// change to every session watching it.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, params ports.UpdateOrderStatusParams) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.UpdateStatus(domain.OrderStatus(params.Status)); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := s.broadcaster.Broadcast(domain.NewOrderUpdatedEvent(updated)); err != nil {
		s.logger.Error("failed to broadcast order updated event",
			"order_id", updated.ID,
			"error", err,
		)
	}

	return updated, nil
}
