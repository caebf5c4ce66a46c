package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kozaktomas/face-gate/internal/events"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler upgrades observers to a websocket and relays hub events to
// them. Delivery is best-effort: a slow observer loses events rather than
// blocking anyone else.
type WSHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates the handler.
func NewWSHandler(hub *events.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is handled by the CORS middleware; the
			// observer channel itself is open like the rest of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := h.hub.AddObserver()
	defer h.hub.RemoveObserver(ch)

	// Initial connection acknowledgment.
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(events.Event{Type: events.TypeConnected}); err != nil {
		return
	}

	// Reader goroutine: observers never send payloads, but reading is how
	// close frames and dropped connections are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
