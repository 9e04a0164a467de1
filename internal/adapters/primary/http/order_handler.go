package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafeflow/backend/internal/adapters/primary/validation"
	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

// OrderHandler handles the guest-facing order endpoints
type OrderHandler struct {
	orderService ports.OrderService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService ports.OrderService, errorHandler *ErrorHandler, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "order"),
	}
}

// RegisterRoutes sets up the routing for the guest order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateOrder)
	r.Get("/{orderID}", h.HandleGetOrder)
}

// --- Request/Response DTOs ---

// CreateOrderRequest defines the expected JSON body for placing an order
type CreateOrderRequest struct {
	Table string             `json:"table"`
	Notes string             `json:"notes"`
	Items []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Qty        int32  `json:"qty"`
}

// Validate validates the create order request
func (r *CreateOrderRequest) Validate() error {
	v := validation.NewValidator()

	v.MaxLength("table", r.Table, domain.MaxTableLength)
	v.MaxLength("notes", r.Notes, domain.MaxNotesLength)
	v.Custom("items", len(r.Items) > 0, "Order must contain at least one item")

	for _, item := range r.Items {
		v.Required("items.menuItemId", item.MenuItemID).
			UUID("items.menuItemId", item.MenuItemID)
		v.Range("items.qty", int(item.Qty), domain.MinItemQty, domain.MaxItemQty)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleCreateOrder handles POST /orders
func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateOrderRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateOrderParams{
		Table: req.Table,
		Notes: req.Notes,
		Items: make([]ports.OrderItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, ports.OrderItemInput{
			MenuItemID: item.MenuItemID,
			Qty:        item.Qty,
		})
	}

	order, err := h.orderService.CreateOrder(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("order placed",
		"request_id", GetRequestID(r.Context()),
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"items", len(order.Items),
	)

	WriteCreated(w, domain.NewOrderSnapshot(order))
}

// HandleGetOrder handles GET /orders/{orderID}
func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewOrderSnapshot(order))
}
