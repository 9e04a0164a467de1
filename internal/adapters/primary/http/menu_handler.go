package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cafeflow/backend/internal/adapters/primary/validation"
	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

// MenuHandler handles the menu catalog endpoints
type MenuHandler struct {
	menuService  ports.MenuService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService ports.MenuService, errorHandler *ErrorHandler, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		menuService:  menuService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "menu"),
	}
}

// RegisterPublicRoutes sets up the unauthenticated menu endpoints.
func (h *MenuHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.HandleListAvailable)
}

// RegisterAdminRoutes sets up the admin catalog endpoints. Callers must
// mount these behind the JWT middleware with the admin role required.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.HandleListAll)
	r.Post("/", h.HandleCreateItem)
	r.Route("/{itemID}", func(r chi.Router) {
		r.Get("/", h.HandleGetItem)
		r.Put("/", h.HandleUpdateItem)
		r.Delete("/", h.HandleDeleteItem)
	})
}

// --- Request/Response DTOs ---

// MenuItemRequest defines the expected JSON body for creating or updating
// a menu item
type MenuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
	ImageURL    string `json:"imageUrl"`
	IsAvailable bool   `json:"isAvailable"`
}

// Validate validates the menu item request
func (r *MenuItemRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MinLength("name", r.Name, domain.MinMenuItemNameLength).
		MaxLength("name", r.Name, domain.MaxMenuItemNameLength)

	v.Custom("priceCents", r.PriceCents >= 0, "Must not be negative")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *MenuItemRequest) toParams() domain.MenuItemParams {
	return domain.MenuItemParams{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		PriceCents:  r.PriceCents,
		ImageURL:    r.ImageURL,
		IsAvailable: r.IsAvailable,
	}
}

// MenuItemDTO defines the JSON response for menu items.
type MenuItemDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
	ImageURL    string `json:"imageUrl,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toMenuItemDTO(item *domain.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		PriceCents:  item.PriceCents,
		ImageURL:    item.ImageURL,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toMenuItemDTOs(items []domain.MenuItem) []MenuItemDTO {
	response := make([]MenuItemDTO, 0, len(items))
	for i := range items {
		response = append(response, toMenuItemDTO(&items[i]))
	}
	return response
}

// --- Handlers ---

// HandleListAvailable handles GET /menu
func (h *MenuHandler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := h.menuService.ListAvailable(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toMenuItemDTOs(items))
}

// HandleListAll handles GET /admin/menu
func (h *MenuHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.menuService.ListAll(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toMenuItemDTOs(items))
}

// HandleGetItem handles GET /admin/menu/{itemID}
func (h *MenuHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	item, err := h.menuService.GetItem(r.Context(), itemID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toMenuItemDTO(item))
}

// HandleCreateItem handles POST /admin/menu
func (h *MenuHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[MenuItemRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	item, err := h.menuService.CreateItem(r.Context(), req.toParams())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("menu item created",
		"request_id", GetRequestID(r.Context()),
		"item_id", item.ID,
		"name", item.Name,
	)

	WriteCreated(w, toMenuItemDTO(item))
}

// HandleUpdateItem handles PUT /admin/menu/{itemID}
func (h *MenuHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	req, err := validation.DecodeAndValidate[MenuItemRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	item, err := h.menuService.UpdateItem(r.Context(), itemID, req.toParams())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toMenuItemDTO(item))
}

// HandleDeleteItem handles DELETE /admin/menu/{itemID}
func (h *MenuHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := h.menuService.DeleteItem(r.Context(), itemID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}
