package domain

import "time"

// OrderSnapshot matches the API response shape for orders. It is fully
// denormalized: everything a client needs to render the order is captured
// at the moment of the event, so no secondary lookup is ever required.
type OrderSnapshot struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	Table       string      `json:"table"`
	Notes       string      `json:"notes"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// NewOrderSnapshot builds a snapshot from a domain order.
func NewOrderSnapshot(order *Order) OrderSnapshot {
	items := make([]OrderItem, len(order.Items))
	copy(items, order.Items)

	return OrderSnapshot{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Table:       order.Table,
		Notes:       order.Notes,
		Status:      string(order.Status),
		Items:       items,
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   order.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
