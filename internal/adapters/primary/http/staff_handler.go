package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafeflow/backend/internal/adapters/primary/validation"
	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

// StaffHandler handles the authenticated staff order endpoints
type StaffHandler struct {
	orderService ports.OrderService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(orderService ports.OrderService, errorHandler *ErrorHandler, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		orderService: orderService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "staff"),
	}
}

// RegisterRoutes sets up the routing for the staff order endpoints.
// Callers must mount these behind the JWT middleware.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.HandleListOrders)
	r.Patch("/orders/{orderID}/status", h.HandleUpdateStatus)
}

// UpdateStatusRequest defines the expected JSON body for status updates
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the update status request
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	allowed := make([]string, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		allowed = append(allowed, string(s))
	}

	v.Required("status", r.Status).
		OneOf("status", r.Status, allowed)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleListOrders handles GET /staff/orders
func (h *StaffHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListRecent(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	snapshots := make([]domain.OrderSnapshot, 0, len(orders))
	for i := range orders {
		snapshots = append(snapshots, domain.NewOrderSnapshot(&orders[i]))
	}

	WriteList(w, snapshots)
}

// HandleUpdateStatus handles PATCH /staff/orders/{orderID}/status
func (h *StaffHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, ports.UpdateOrderStatusParams{
		Status: req.Status,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("order status updated",
		"request_id", GetRequestID(r.Context()),
		"order_id", order.ID,
		"status", order.Status,
	)

	WriteJSON(w, http.StatusOK, domain.NewOrderSnapshot(order))
}
