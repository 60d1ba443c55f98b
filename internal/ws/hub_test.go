package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

// dialPair upgrades a connection against a throwaway server and returns both
// ends: the server side goes into the hub, the client side reads broadcasts.
func dialPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server connection")
	}
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(logger.New(logger.Options{ServiceName: "test"}))
	basketID := uuid.New()
	serverConn, _ := dialPair(t)

	hub.Subscribe(basketID, serverConn)
	if hub.RoomSize(basketID) != 1 {
		t.Fatalf("expected room size 1, got %d", hub.RoomSize(basketID))
	}

	hub.Unsubscribe(basketID, serverConn)
	if hub.RoomSize(basketID) != 0 {
		t.Fatalf("expected empty room, got %d", hub.RoomSize(basketID))
	}
}

func TestHubBroadcastReachesRoom(t *testing.T) {
	hub := NewHub(logger.New(logger.Options{ServiceName: "test"}))
	basketID := uuid.New()
	serverConn, clientConn := dialPair(t)
	hub.Subscribe(basketID, serverConn)

	otherServer, otherClient := dialPair(t)
	hub.Subscribe(uuid.New(), otherServer)

	hub.Broadcast(context.Background(), basketID, []byte(`{"event":"stuff_created"}`))

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := clientConn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(payload) != `{"event":"stuff_created"}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	// The other room must stay silent.
	otherClient.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := otherClient.ReadMessage(); err == nil {
		t.Fatal("expected no message in the other room")
	}
}

func TestHubBroadcastEvictsDeadConnections(t *testing.T) {
	hub := NewHub(logger.New(logger.Options{ServiceName: "test"}))
	basketID := uuid.New()
	serverConn, clientConn := dialPair(t)
	hub.Subscribe(basketID, serverConn)

	clientConn.Close()
	serverConn.Close()

	hub.Broadcast(context.Background(), basketID, []byte("ping"))
	if hub.RoomSize(basketID) != 0 {
		t.Fatalf("expected dead connection evicted, room size %d", hub.RoomSize(basketID))
	}
}
