package domain

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/cafeflow/backend/internal/core/errors"
)

// Order field limits
const (
	MaxTableLength = 20
	MaxNotesLength = 300
	MinItemQty     = 1
	MaxItemQty     = 20
)

// OrderStatus represents the possible states of an order.
type OrderStatus string

const (
	StatusNew        OrderStatus = "NEW"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// AllStatuses lists every recognized order status.
var AllStatuses = []OrderStatus{StatusNew, StatusInProgress, StatusReady, StatusCompleted, StatusCancelled}

// IsValid reports whether the status is one of the recognized values.
func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// OrderItem is a line item captured at order time. Name and price are
// snapshots of the menu item at the moment the order was placed.
type OrderItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Qty        int32  `json:"qty"`
}

// Order is the core domain entity.
type Order struct {
	ID          string
	OrderNumber string
	Table       string
	Notes       string
	Status      OrderStatus
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder is a factory function to create a valid new order.
func NewOrder(table, notes string, items []OrderItem) (*Order, error) {
	if len(table) > MaxTableLength {
		return nil, apperrors.ErrTableTooLong
	}
	if len(notes) > MaxNotesLength {
		return nil, apperrors.ErrNotesTooLong
	}
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}
	for _, item := range items {
		if item.Qty < MinItemQty || item.Qty > MaxItemQty {
			return nil, apperrors.ErrInvalidQuantity
		}
	}

	now := time.Now().UTC()
	return &Order{
		ID:          uuid.NewString(),
		OrderNumber: NewOrderNumber(),
		Table:       table,
		Notes:       notes,
		Status:      StatusNew,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateStatus changes the order's status, enforcing business rules.
// Completed and cancelled orders are terminal.
func (o *Order) UpdateStatus(newStatus OrderStatus) error {
	if !newStatus.IsValid() {
		return apperrors.ErrInvalidStatus
	}
	if o.Status.IsTerminal() || newStatus == o.Status {
		return apperrors.ErrInvalidStatusTransition
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// TotalCents returns the order total across all line items.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.PriceCents * int64(item.Qty)
	}
	return total
}

// orderNumberAlphabet excludes easily confused characters (I, L, O, U).
const orderNumberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// OrderNumberLength is the length of generated order numbers.
const OrderNumberLength = 7

// NewOrderNumber generates a short, human-readable order reference.
func NewOrderNumber() string {
	buf := make([]byte, OrderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a uuid-derived reference rather than panicking mid-order.
		return uuid.NewString()[:OrderNumberLength]
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return string(buf)
}
