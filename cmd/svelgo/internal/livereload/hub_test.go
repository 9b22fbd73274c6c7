package livereload

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ClientCount = %d, want %d", h.ClientCount(), want)
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	h.Broadcast("reload", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg["type"] != "reload" {
		t.Errorf("type = %v, want reload", msg["type"])
	}
}

func TestHubBroadcastData(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	h.Broadcast("error", map[string]interface{}{"message": "boom"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg["type"] != "error" || msg["message"] != "boom" {
		t.Errorf("msg = %v, want error/boom", msg)
	}
}

func TestHubHello(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	if err := conn.WriteJSON(map[string]interface{}{"type": "HELLO"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg["type"] != "ACK" {
		t.Errorf("type = %v, want ACK", msg["type"])
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	dialHub(t, h)
	waitForClients(t, h, 1)

	h.Close()
	waitForClients(t, h, 0)
}
