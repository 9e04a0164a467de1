package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventOrderCreated EventType = "orderCreated"
	EventOrderUpdated EventType = "orderUpdated"
	EventStaffHello   EventType = "staffHello"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`

	// OrderID routes order events to the matching order room.
	// It is not part of the wire format; clients read the snapshot.
	OrderID string `json:"-"`
}

// NewOrderCreatedEvent builds the event broadcast after an order is persisted.
func NewOrderCreatedEvent(order *Order) Event {
	return Event{
		Type:    EventOrderCreated,
		Payload: NewOrderSnapshot(order),
		OrderID: order.ID,
	}
}

// NewOrderUpdatedEvent builds the event broadcast after a status change is persisted.
func NewOrderUpdatedEvent(order *Order) Event {
	return Event{
		Type:    EventOrderUpdated,
		Payload: NewOrderSnapshot(order),
		OrderID: order.ID,
	}
}
