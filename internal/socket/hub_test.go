package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestClient upgrades an in-process HTTP connection and registers
// the server side of it on the hub.
func dialTestClient(t *testing.T, hub *Hub, userID, role string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, role, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSendToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Send("nobody", []byte("ping")))
	assert.Equal(t, 0, hub.Count())
}

func TestRegisterUnregisterCount(t *testing.T) {
	hub := NewHub()
	dialTestClient(t, hub, "driver-1", "driver")
	dialTestClient(t, hub, "admin-1", "admin")

	waitForCount(t, hub, 2)

	hub.Unregister("driver-1")
	assert.Equal(t, 1, hub.Count())
	hub.Unregister("driver-1") // already gone, no panic
	assert.Equal(t, 1, hub.Count())
}

func TestSendReachesRegisteredClient(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, "driver-1", "driver")
	waitForCount(t, hub, 1)

	require.NoError(t, hub.Send("driver-1", []byte(`{"type":"task_assigned"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"task_assigned"}`, string(msg))
}

func TestBroadcastFiltersByRole(t *testing.T) {
	hub := NewHub()
	adminConn := dialTestClient(t, hub, "admin-1", "admin")
	driverConn := dialTestClient(t, hub, "driver-1", "driver")
	waitForCount(t, hub, 2)

	hub.Broadcast("admin", []byte("shipment_updated"))

	adminConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := adminConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "shipment_updated", string(msg))

	driverConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = driverConn.ReadMessage()
	assert.Error(t, err, "driver should not receive admin broadcasts")
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients (have %d)", want, hub.Count())
}
