package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/cafeflow/backend/internal/core/errors"
)

// MenuItem name limits
const (
	MinMenuItemNameLength = 2
	MaxMenuItemNameLength = 120
)

// DefaultCategory groups items that were created without one.
const DefaultCategory = "General"

// MenuItem is a purchasable item on the café menu.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Category    string
	PriceCents  int64
	ImageURL    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MenuItemParams holds the fields accepted when creating a menu item.
type MenuItemParams struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	ImageURL    string
	IsAvailable bool
}

// NewMenuItem is a factory function to create a valid new menu item.
func NewMenuItem(params MenuItemParams) (*MenuItem, error) {
	if len(params.Name) < MinMenuItemNameLength {
		return nil, apperrors.ErrNameRequired
	}
	if params.PriceCents < 0 {
		return nil, apperrors.ErrNegativePrice
	}

	category := params.Category
	if category == "" {
		category = DefaultCategory
	}

	now := time.Now().UTC()
	return &MenuItem{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Description: params.Description,
		Category:    category,
		PriceCents:  params.PriceCents,
		ImageURL:    params.ImageURL,
		IsAvailable: params.IsAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply replaces the mutable fields of an item with validated values.
func (m *MenuItem) Apply(params MenuItemParams) error {
	if len(params.Name) < MinMenuItemNameLength {
		return apperrors.ErrNameRequired
	}
	if params.PriceCents < 0 {
		return apperrors.ErrNegativePrice
	}

	category := params.Category
	if category == "" {
		category = DefaultCategory
	}

	m.Name = params.Name
	m.Description = params.Description
	m.Category = category
	m.PriceCents = params.PriceCents
	m.ImageURL = params.ImageURL
	m.IsAvailable = params.IsAvailable
	m.UpdatedAt = time.Now().UTC()
	return nil
}
