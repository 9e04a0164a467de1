package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/cafeflow/backend/internal/adapters/primary/websocket"
	"github.com/cafeflow/backend/internal/auth"
	"github.com/cafeflow/backend/internal/config"
)

// WebSocketHandler handles WebSocket connection upgrades for the staff
// queue and the public order-tracking channel.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	tm       *auth.TokenManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:    hub,
		tm:     tm,
		logger: logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		// Check against allowed origins
		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// HandleStaff upgrades connections to the staff queue. Authentication
// happens before the upgrade, so a rejected handshake is a plain HTTP
// error response the browser can read.
func (h *WebSocketHandler) HandleStaff(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	tokenString := staffToken(r)
	if tokenString == "" {
		h.logger.Warn("staff websocket rejected: missing token",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
		)
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tm.ValidateAccessToken(tokenString)
	if err != nil {
		h.logger.Warn("staff websocket rejected: invalid token",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	principal := auth.FromClaims(claims)
	if !principal.Role.IsStaff() {
		h.logger.Warn("staff websocket rejected: role not permitted",
			"request_id", requestID,
			"user_id", principal.ID,
			"role", principal.Role,
		)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade staff websocket",
			"request_id", requestID,
			"user_id", principal.ID,
			"error", err,
		)
		return
	}

	h.logger.Info("staff websocket established",
		"request_id", requestID,
		"user_id", principal.ID,
		"remote_addr", r.RemoteAddr,
	)

	client := wsAdapter.NewStaffClient(h.hub, conn, principal, h.logger)
	if err := h.hub.RegisterStaff(client); err != nil {
		h.logger.Error("failed to register staff session",
			"request_id", requestID,
			"user_id", principal.ID,
			"error", err,
		)
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleOrders upgrades connections to the public order-tracking channel.
// No authentication is required; sessions start with no subscriptions and
// join order channels explicitly.
func (h *WebSocketHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade order websocket",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	h.logger.Info("order websocket established",
		"request_id", requestID,
		"remote_addr", r.RemoteAddr,
	)

	client := wsAdapter.NewOrderClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// staffToken extracts the access token from the query string or the
// Authorization header. Browsers cannot set headers on websocket
// handshakes, so the query parameter is the primary path.
func staffToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}
