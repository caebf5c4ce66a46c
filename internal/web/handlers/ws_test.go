package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kozaktomas/face-gate/internal/events"
)

func handlerMux(handler *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.Serve)
	return mux
}

func waitForObservers(t *testing.T, hub *events.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ObserverCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("observer count never reached %d, at %d", want, hub.ObserverCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event events.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return event
}

func TestWS_ConnectedAck(t *testing.T) {
	hub := events.NewHub()
	handler := NewWSHandler(hub)
	server := httptest.NewServer(handlerMux(handler))
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	ack := readEvent(t, conn)
	if ack.Type != events.TypeConnected {
		t.Errorf("expected %q ack, got %q", events.TypeConnected, ack.Type)
	}
}

func TestWS_ReceivesPublishedEvents(t *testing.T) {
	hub := events.NewHub()
	handler := NewWSHandler(hub)
	server := httptest.NewServer(handlerMux(handler))
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	readEvent(t, conn) // connected ack

	waitForObservers(t, hub, 1)
	hub.Publish(events.Event{
		Type: events.TypeTrigger,
		Data: events.TriggerPayload{Timestamp: 1234},
	})

	event := readEvent(t, conn)
	if event.Type != events.TypeTrigger {
		t.Fatalf("expected trigger event, got %q", event.Type)
	}
	payload, ok := event.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload["timestamp"] != float64(1234) {
		t.Errorf("expected timestamp 1234, got %v", payload["timestamp"])
	}
}

func TestWS_ObserverRemovedOnClose(t *testing.T) {
	hub := events.NewHub()
	handler := NewWSHandler(hub)
	server := httptest.NewServer(handlerMux(handler))
	defer server.Close()

	conn := dialWS(t, server)
	readEvent(t, conn) // connected ack
	waitForObservers(t, hub, 1)

	conn.Close()
	waitForObservers(t, hub, 0)
}
