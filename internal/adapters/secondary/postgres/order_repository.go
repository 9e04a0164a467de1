package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafeflow/backend/internal/core/domain"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

// OrderRepository handles database operations for orders. Line items are
// stored as a JSONB snapshot on the order row.
type OrderRepository struct {
	pool *pgxpool.Pool
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository.
func NewOrderRepository(pool *pgxpool.Pool) ports.OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order to the database.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, order_number, table_label, notes, status, items, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.OrderNumber, order.Table, order.Notes, string(order.Status), items,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves a single order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, order_number, table_label, notes, status, items, created_at, updated_at
		 FROM orders WHERE id = $1`,
		id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return order, nil
}

// UpdateStatus persists a status change made on the domain entity.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		order.ID, string(order.Status), order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrOrderNotFound
	}

	return order, nil
}

// ListRecent returns the newest orders, most recent first.
func (r *OrderRepository) ListRecent(ctx context.Context, limit int32) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_number, table_label, notes, status, items, created_at, updated_at
		 FROM orders ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// scanOrder reads one order row, decoding the items snapshot.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order  domain.Order
		status string
		items  []byte
	)

	if err := row.Scan(&order.ID, &order.OrderNumber, &order.Table, &order.Notes,
		&status, &items, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	return &order, nil
}
