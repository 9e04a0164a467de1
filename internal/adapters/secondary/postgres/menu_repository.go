package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

const menuItemColumns = `id, name, description, category, price_cents, image_url, is_available, created_at, updated_at`

// MenuItemRepository handles database operations for menu items.
type MenuItemRepository struct {
	pool *pgxpool.Pool
}

var _ ports.MenuItemRepository = (*MenuItemRepository)(nil)

// NewMenuItemRepository creates a new menu item repository.
func NewMenuItemRepository(pool *pgxpool.Pool) ports.MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

// Create persists a new menu item.
func (r *MenuItemRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO menu_items (id, name, description, category, price_cents, image_url, is_available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.Name, item.Description, item.Category, item.PriceCents,
		item.ImageURL, item.IsAvailable, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}

	return nil
}

// GetByID retrieves a single menu item.
func (r *MenuItemRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)

	item, err := scanMenuItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	return item, nil
}

// GetByIDs retrieves the menu items matching the given IDs. Missing IDs are
// simply absent from the result.
func (r *MenuItemRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query menu items by ids: %w", err)
	}
	defer rows.Close()

	return collectMenuItems(rows)
}

// ListAvailable returns the items guests can currently order.
func (r *MenuItemRepository) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE is_available ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("query available menu items: %w", err)
	}
	defer rows.Close()

	return collectMenuItems(rows)
}

// List returns the full catalog.
func (r *MenuItemRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	return collectMenuItems(rows)
}

// Update replaces the mutable fields of an existing item.
func (r *MenuItemRepository) Update(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE menu_items
		 SET name = $2, description = $3, category = $4, price_cents = $5,
		     image_url = $6, is_available = $7, updated_at = $8
		 WHERE id = $1`,
		item.ID, item.Name, item.Description, item.Category, item.PriceCents,
		item.ImageURL, item.IsAvailable, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrMenuItemNotFound
	}

	return item, nil
}

// Delete removes a menu item from the catalog.
func (r *MenuItemRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMenuItemNotFound
	}

	return nil
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Category,
		&item.PriceCents, &item.ImageURL, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func collectMenuItems(rows pgx.Rows) ([]domain.MenuItem, error) {
	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
