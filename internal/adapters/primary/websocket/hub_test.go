package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafeflow/backend/internal/core/domain"
)

// drain collects every event currently buffered on the client.
func drain(c *Client) []domain.Event {
	var events []domain.Event
	for {
		select {
		case e, ok := <-c.Send:
			if !ok {
				return events
			}
			events = append(events, e)
		default:
			return events
		}
	}
}

func placedOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("3", "", []domain.OrderItem{
		{MenuItemID: "mi-flat-white", Name: "Flat White", PriceCents: 520, Qty: 1},
	})
	require.NoError(t, err)
	return order
}

func TestHub_BroadcastRouting(t *testing.T) {
	hub := newTestHub()

	staff := staffClient(hub)
	require.NoError(t, hub.RegisterStaff(staff))
	drain(staff) // discard the hello

	watcher := anonClient(hub)
	hub.Register(watcher)

	bystander := anonClient(hub)
	hub.Register(bystander)

	order := placedOrder(t)
	hub.JoinOrder(watcher, order.ID)
	hub.JoinOrder(bystander, "some-other-order-id")

	// orderCreated goes to staff only.
	require.NoError(t, hub.Broadcast(domain.NewOrderCreatedEvent(order)))

	staffEvents := drain(staff)
	require.Len(t, staffEvents, 1)
	assert.Equal(t, domain.EventOrderCreated, staffEvents[0].Type)
	assert.Empty(t, drain(watcher))
	assert.Empty(t, drain(bystander))

	// orderUpdated goes to staff and the order's watchers.
	require.NoError(t, order.UpdateStatus(domain.StatusInProgress))
	require.NoError(t, hub.Broadcast(domain.NewOrderUpdatedEvent(order)))

	staffEvents = drain(staff)
	require.Len(t, staffEvents, 1)
	assert.Equal(t, domain.EventOrderUpdated, staffEvents[0].Type)

	watcherEvents := drain(watcher)
	require.Len(t, watcherEvents, 1)
	assert.Equal(t, domain.EventOrderUpdated, watcherEvents[0].Type)

	snapshot, ok := watcherEvents[0].Payload.(domain.OrderSnapshot)
	require.True(t, ok)
	assert.Equal(t, string(domain.StatusInProgress), snapshot.Status)

	assert.Empty(t, drain(bystander))
}

func TestHub_BroadcastPreservesPerOrderOrdering(t *testing.T) {
	hub := newTestHub()

	watcher := anonClient(hub)
	hub.Register(watcher)

	order := placedOrder(t)
	hub.JoinOrder(watcher, order.ID)

	for _, status := range []domain.OrderStatus{domain.StatusInProgress, domain.StatusReady, domain.StatusCompleted} {
		require.NoError(t, order.UpdateStatus(status))
		require.NoError(t, hub.Broadcast(domain.NewOrderUpdatedEvent(order)))
	}

	events := drain(watcher)
	require.Len(t, events, 3)

	want := []string{
		string(domain.StatusInProgress),
		string(domain.StatusReady),
		string(domain.StatusCompleted),
	}
	for i, e := range events {
		snapshot := e.Payload.(domain.OrderSnapshot)
		assert.Equal(t, want[i], snapshot.Status)
	}
}

func TestHub_BroadcastDeliversOncePerSession(t *testing.T) {
	hub := newTestHub()

	// A staff session that also watches the order must get one copy.
	staff := staffClient(hub)
	require.NoError(t, hub.RegisterStaff(staff))
	drain(staff)

	order := placedOrder(t)
	hub.JoinOrder(staff, order.ID)

	require.NoError(t, order.UpdateStatus(domain.StatusReady))
	require.NoError(t, hub.Broadcast(domain.NewOrderUpdatedEvent(order)))

	assert.Len(t, drain(staff), 1)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := newTestHub()

	watcher := anonClient(hub)
	hub.Register(watcher)

	order := placedOrder(t)
	hub.JoinOrder(watcher, order.ID)
	hub.Unregister(watcher)

	assert.Equal(t, 0, hub.SessionCount())
	assert.Equal(t, 0, hub.MembersInGroup(OrderChannel(order.ID)))

	// Broadcasting after disconnect reaches nobody and does not panic.
	require.NoError(t, order.UpdateStatus(domain.StatusReady))
	require.NoError(t, hub.Broadcast(domain.NewOrderUpdatedEvent(order)))

	// Unregistering twice is safe; CloseSend is once-only.
	hub.Unregister(watcher)
}

func TestHub_DeliveryAfterUnregisterIsDropped(t *testing.T) {
	hub := newTestHub()

	watcher := anonClient(hub)
	hub.Register(watcher)

	order := placedOrder(t)
	hub.JoinOrder(watcher, order.ID)

	// A broadcast snapshots the member set before fanning out, so a
	// session can disconnect between the snapshot and its delivery
	// attempt. That late attempt must be a silent drop.
	members := hub.registry.MembersOf(OrderChannel(order.ID))
	require.Len(t, members, 1)

	hub.Unregister(watcher)

	require.NoError(t, order.UpdateStatus(domain.StatusReady))
	event := domain.NewOrderUpdatedEvent(order)
	require.NotPanics(t, func() {
		for _, m := range members {
			m.enqueue(event)
		}
	})
	assert.Empty(t, drain(watcher))
}

func TestHub_ConcurrentBroadcastAndDisconnect(t *testing.T) {
	hub := newTestHub()

	order := placedOrder(t)
	require.NoError(t, order.UpdateStatus(domain.StatusReady))
	event := domain.NewOrderUpdatedEvent(order)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				watcher := anonClient(hub)
				hub.Register(watcher)
				hub.JoinOrder(watcher, order.ID)
				hub.Unregister(watcher)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_ = hub.Broadcast(event)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.SessionCount())
}

func TestHub_JoinOrderIgnoresShortIDs(t *testing.T) {
	hub := newTestHub()

	watcher := anonClient(hub)
	hub.Register(watcher)

	hub.JoinOrder(watcher, "abc")
	assert.Equal(t, 0, hub.MembersInGroup(OrderChannel("abc")))

	hub.JoinOrder(watcher, "abcdef")
	assert.Equal(t, 1, hub.MembersInGroup(OrderChannel("abcdef")))
}

func TestHub_RegisterStaffSendsHello(t *testing.T) {
	hub := newTestHub()

	staff := staffClient(hub)
	require.NoError(t, hub.RegisterStaff(staff))

	events := drain(staff)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventStaffHello, events[0].Type)

	hello, ok := events[0].Payload.(StaffHelloPayload)
	require.True(t, ok)
	assert.True(t, hello.OK)
	assert.Equal(t, string(domain.RoleStaff), hello.Role)

	assert.Equal(t, 1, hub.MembersInGroup(StaffQueue()))
}

func TestHub_RegisterStaffRejectsNonStaff(t *testing.T) {
	hub := newTestHub()

	anon := anonClient(hub)
	err := hub.RegisterStaff(anon)

	require.Error(t, err)
	assert.Equal(t, 0, hub.SessionCount())
	assert.Equal(t, 0, hub.MembersInGroup(StaffQueue()))
}

func TestClient_EnqueueDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()

	watcher := anonClient(hub)
	hub.Register(watcher)

	order := placedOrder(t)
	hub.JoinOrder(watcher, order.ID)

	event := domain.NewOrderUpdatedEvent(order)
	for i := 0; i < sendBufferSize+10; i++ {
		require.NoError(t, hub.Broadcast(event))
	}

	// The buffer holds exactly its capacity; overflow was dropped, not
	// blocked on.
	assert.Len(t, drain(watcher), sendBufferSize)
}
