package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/cafeflow/backend/internal/adapters/primary/websocket"
	"github.com/cafeflow/backend/internal/auth"
	"github.com/cafeflow/backend/internal/config"
	"github.com/cafeflow/backend/internal/core/domain"
)

func wsTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wsTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "development"},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// wsTestServer wires a hub and handler behind a live httptest server so
// tests exercise the real handshake path.
func wsTestServer(t *testing.T) (*httptest.Server, *wsAdapter.Hub, *auth.TokenManager) {
	t.Helper()

	logger := wsTestLogger()
	hub := wsAdapter.NewHub(logger)
	tm := auth.NewTokenManager("test-access", "test-refresh", 15*time.Minute, time.Hour)
	handler := NewWebSocketHandler(hub, tm, wsTestConfig(), logger)

	r := chi.NewRouter()
	r.Get("/ws/staff", handler.HandleStaff)
	r.Get("/ws/orders", handler.HandleOrders)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, hub, tm
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func placedTestOrder(t *testing.T) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder("7", "", []domain.OrderItem{
		{MenuItemID: "mi-1", Name: "Flat White", PriceCents: 520, Qty: 1},
	})
	require.NoError(t, err)
	return order
}

func TestHandleStaff_RejectsBadHandshakes(t *testing.T) {
	srv, _, tm := wsTestServer(t)

	dialRejection := func(t *testing.T, url string) (int, string) {
		t.Helper()
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		require.Nil(t, conn)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, strings.TrimSpace(string(body))
	}

	t.Run("missing token", func(t *testing.T) {
		status, reason := dialRejection(t, wsURL(srv, "/ws/staff"))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Missing token", reason)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewTokenManager("test-access", "test-refresh", -time.Minute, time.Hour)
		token, err := expired.GenerateAccessToken("user-1", domain.RoleStaff)
		require.NoError(t, err)

		status, reason := dialRejection(t, wsURL(srv, "/ws/staff?token="+token))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token", reason)
	})

	t.Run("token without a staff role", func(t *testing.T) {
		token, err := tm.GenerateAccessToken("user-1", "customer")
		require.NoError(t, err)

		status, reason := dialRejection(t, wsURL(srv, "/ws/staff?token="+token))
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Forbidden", reason)
	})
}

func TestHandleStaff_DeliversQueueEvents(t *testing.T) {
	srv, hub, tm := wsTestServer(t)

	token, err := tm.GenerateAccessToken("user-1", domain.RoleStaff)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/staff?token="+token), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	hello := readMessage(t, conn)
	assert.Equal(t, string(domain.EventStaffHello), hello.Type)

	var helloPayload wsAdapter.StaffHelloPayload
	require.NoError(t, json.Unmarshal(hello.Payload, &helloPayload))
	assert.True(t, helloPayload.OK)
	assert.Equal(t, string(domain.RoleStaff), helloPayload.Role)

	order := placedTestOrder(t)
	require.NoError(t, hub.Broadcast(domain.NewOrderCreatedEvent(order)))

	msg := readMessage(t, conn)
	assert.Equal(t, string(domain.EventOrderCreated), msg.Type)

	var snapshot domain.OrderSnapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snapshot))
	assert.Equal(t, order.ID, snapshot.ID)
	assert.Equal(t, order.OrderNumber, snapshot.OrderNumber)
}

func TestHandleStaff_AuthorizationHeader(t *testing.T) {
	srv, hub, tm := wsTestServer(t)

	token, err := tm.GenerateAccessToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/staff"), header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	hello := readMessage(t, conn)
	assert.Equal(t, string(domain.EventStaffHello), hello.Type)

	require.Eventually(t, func() bool {
		return hub.MembersInGroup(wsAdapter.StaffQueue()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleOrders_JoinAndReceiveUpdates(t *testing.T) {
	srv, hub, _ := wsTestServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/orders"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	order := placedTestOrder(t)

	join := map[string]any{"type": "joinOrder", "payload": order.ID}
	require.NoError(t, conn.WriteJSON(join))

	// Joining happens on the read pump goroutine; wait for the
	// subscription before broadcasting.
	require.Eventually(t, func() bool {
		return hub.MembersInGroup(wsAdapter.OrderChannel(order.ID)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, order.UpdateStatus(domain.StatusInProgress))
	require.NoError(t, hub.Broadcast(domain.NewOrderUpdatedEvent(order)))

	msg := readMessage(t, conn)
	assert.Equal(t, string(domain.EventOrderUpdated), msg.Type)

	var snapshot domain.OrderSnapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snapshot))
	assert.Equal(t, order.ID, snapshot.ID)
	assert.Equal(t, string(domain.StatusInProgress), snapshot.Status)
}

func TestHandleOrders_IgnoresMalformedMessages(t *testing.T) {
	srv, hub, _ := wsTestServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/orders"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "joinOrder", "payload": "abc"}))

	order := placedTestOrder(t)
	join := map[string]any{"type": "joinOrder", "payload": order.ID}
	require.NoError(t, conn.WriteJSON(join))

	require.Eventually(t, func() bool {
		return hub.MembersInGroup(wsAdapter.OrderChannel(order.ID)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The short identifier must not have produced a subscription.
	assert.Equal(t, 0, hub.MembersInGroup(wsAdapter.OrderChannel("abc")))
}
