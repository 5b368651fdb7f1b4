package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kbtools/pdf-ingest/service"
)

// ProgressWSHandler streams pipeline progress events to websocket clients.
type ProgressWSHandler struct {
	hub      *service.ProgressHub
	upgrader websocket.Upgrader
}

func NewProgressWSHandler(hub *service.ProgressHub) *ProgressWSHandler {
	return &ProgressWSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (h *ProgressWSHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(4 * 1024)

	events, cancel := h.hub.Subscribe()
	defer cancel()

	// Read pump: only there to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket read error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func (h *ProgressWSHandler) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
