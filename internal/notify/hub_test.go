package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+server.URL[len("http"):], nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count stuck at %d, want %d", hub.ClientCount(), want)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Shutdown)

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Broadcast(Event{
		Name:    EventServerReady,
		Payload: map[string]interface{}{"url": "http://localhost:5000"},
		Time:    time.Now(),
	})

	event := readEvent(t, conn)
	assert.Equal(t, EventServerReady, event.Name)
	assert.Equal(t, "http://localhost:5000", event.Payload["url"])
}

func TestHubForwardsBusEvents(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Shutdown)

	bus := NewBus()
	hub.AttachBus(bus)

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	bus.Publish(EventBuildEnd, map[string]interface{}{"success": true})

	event := readEvent(t, conn)
	assert.Equal(t, EventBuildEnd, event.Name)
	assert.Equal(t, true, event.Payload["success"])
}

func TestHubClientDisconnectLeavesRegistry(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Shutdown)

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))
	waitForClients(t, hub, 0)
}

func TestHubShutdownIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	hub.Shutdown()
	assert.NotPanics(t, hub.Shutdown)
}
