package ports

import (
	"context"
	"time"

	"github.com/cafeflow/backend/internal/core/domain"
)

// OrderItemInput is a single line of a new order as submitted by a guest.
type OrderItemInput struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Qty        int32  `json:"qty" validate:"required,min=1,max=20"`
}

// CreateOrderParams carries the data needed to place a new order.
type CreateOrderParams struct {
	Table string           `json:"table" validate:"max=20"`
	Notes string           `json:"notes" validate:"max=300"`
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusParams carries a staff status change request.
type UpdateOrderStatusParams struct {
	Status string `json:"status" validate:"required"`
}

// OrderService defines the interface for order business logic.
type OrderService interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListRecent(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, params UpdateOrderStatusParams) (*domain.Order, error)
}

// MenuService defines the interface for menu business logic.
type MenuService interface {
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	ListAll(ctx context.Context) ([]domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	CreateItem(ctx context.Context, params domain.MenuItemParams) (*domain.MenuItem, error)
	UpdateItem(ctx context.Context, id string, params domain.MenuItemParams) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// TokenPair bundles the credentials issued on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService defines the interface for authentication business logic.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

// EventBroadcaster publishes a domain event to every interested realtime
// session. Publication happens in the caller's control flow so that events
// for the same order leave in the order their state changes were made.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// MenuCache is an optional read-through cache for the public menu.
type MenuCache interface {
	Get(ctx context.Context) ([]domain.MenuItem, bool)
	Set(ctx context.Context, items []domain.MenuItem, ttl time.Duration)
	Invalidate(ctx context.Context)
}
