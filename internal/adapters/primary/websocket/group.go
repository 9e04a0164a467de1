package websocket

import (
	"github.com/cafeflow/backend/internal/auth"
)

// MinOrderIDLength is the minimum length a join request's order id must
// have. Shorter ids are ignored to make blind enumeration less trivial.
const MinOrderIDLength = 6

type groupKind uint8

const (
	kindStaffQueue groupKind = iota + 1
	kindOrderChannel
)

// Group is an addressable broadcast target. It is a small comparable value
// so it can key registry maps directly.
type Group struct {
	kind    groupKind
	orderID string
}

// StaffQueue returns the singleton group for the global staff dashboard.
func StaffQueue() Group {
	return Group{kind: kindStaffQueue}
}

// OrderChannel returns the per-order group observed by the customer who
// placed the order.
func OrderChannel(orderID string) Group {
	return Group{kind: kindOrderChannel, orderID: orderID}
}

// Admits is the membership predicate for the group. It is evaluated once,
// when a session joins; membership is not re-validated per event.
func (g Group) Admits(p auth.Principal) bool {
	switch g.kind {
	case kindStaffQueue:
		return p.Role.IsStaff()
	case kindOrderChannel:
		return true
	default:
		return false
	}
}

// String renders the group for logging.
func (g Group) String() string {
	switch g.kind {
	case kindStaffQueue:
		return "staff"
	case kindOrderChannel:
		return "order:" + g.orderID
	default:
		return "unknown"
	}
}
