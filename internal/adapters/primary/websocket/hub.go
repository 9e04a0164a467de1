package websocket

import (
	"log/slog"

	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

// Hub fans domain events out to the sessions subscribed to the events'
// target groups. The hub owns the subscription registry; nothing else may
// mutate group membership.
type Hub struct {
	registry *Registry
	logger   *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(logger),
		logger:   logger.With("component", "ws_hub"),
	}
}

// Broadcast resolves the event's target groups and pushes the event to
// every current member. It runs synchronously in the caller's control
// flow, so events for a single order leave here in the same order the
// store writes completed. Delivery itself is fire-and-forget: each push is
// a non-blocking enqueue onto the member's send buffer, so one slow peer
// cannot delay the rest. Publishing always succeeds from the caller's
// perspective; only delivery to individual recipients can fail.
func (h *Hub) Broadcast(event domain.Event) error {
	// A session in more than one target group still gets one delivery.
	recipients := make(map[*Client]struct{})
	for _, g := range targetGroups(event) {
		for _, c := range h.registry.MembersOf(g) {
			recipients[c] = struct{}{}
		}
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"order_id", event.OrderID,
		"recipient_count", len(recipients),
	)

	for c := range recipients {
		c.enqueue(event)
	}
	return nil
}

// targetGroups implements the routing rule: creations concern only the
// staff queue; updates concern staff and the order's own channel.
func targetGroups(event domain.Event) []Group {
	switch event.Type {
	case domain.EventOrderCreated:
		return []Group{StaffQueue()}
	case domain.EventOrderUpdated:
		return []Group{StaffQueue(), OrderChannel(event.OrderID)}
	default:
		return nil
	}
}

// Register adds a session to the hub before its pumps start.
func (h *Hub) Register(c *Client) {
	h.registry.Register(c)

	h.logger.Info("session registered",
		"session_id", c.ID,
		"role", c.Principal.Role,
		"total_sessions", h.registry.SessionCount(),
	)
}

// RegisterStaff adds a staff session and joins it to the staff queue. The
// caller must already have authorized the principal; Join re-checks the
// group predicate as a final guard.
func (h *Hub) RegisterStaff(c *Client) error {
	h.Register(c)
	if err := h.registry.Join(c, StaffQueue()); err != nil {
		h.Unregister(c)
		return err
	}

	c.enqueue(domain.Event{
		Type:    domain.EventStaffHello,
		Payload: StaffHelloPayload{OK: true, Role: string(c.Principal.Role)},
	})
	return nil
}

// Unregister removes a session from every group and closes its send
// channel. All of the session's subscriptions are invalidated atomically.
func (h *Hub) Unregister(c *Client) {
	h.registry.DropSession(c)
	c.CloseSend()

	h.logger.Info("session unregistered",
		"session_id", c.ID,
	)
}

// JoinOrder subscribes a session to an order's channel. Requests naming an
// implausibly short order id are silently ignored; join is best-effort UX
// on the public channel, not a security boundary.
func (h *Hub) JoinOrder(c *Client, orderID string) {
	if len(orderID) < MinOrderIDLength {
		h.logger.Debug("ignoring join with short order id",
			"session_id", c.ID,
			"order_id", orderID,
		)
		return
	}
	// OrderChannel admits any principal; Join cannot fail here.
	_ = h.registry.Join(c, OrderChannel(orderID))
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	return h.registry.SessionCount()
}

// MembersInGroup returns the number of sessions subscribed to a group.
func (h *Hub) MembersInGroup(g Group) int {
	return h.registry.MemberCount(g)
}

// StaffHelloPayload greets a staff session once it is subscribed.
type StaffHelloPayload struct {
	OK   bool   `json:"ok"`
	Role string `json:"role"`
}
