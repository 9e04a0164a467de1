package ports

import (
	"context"

	"github.com/cafeflow/backend/internal/core/domain"
)

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int32) ([]domain.Order, error)
}

// MenuItemRepository defines the interface for menu item persistence.
type MenuItemRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	List(ctx context.Context) ([]domain.MenuItem, error)
	Update(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error
}
