package booking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"kartbook/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AvailabilityUpdate is pushed to websocket subscribers of a date.
type AvailabilityUpdate struct {
	Type      string             `json:"type"`
	Date      string             `json:"date"`
	Timeslots []SlotAvailability `json:"timeslots"`
}

// Hub pushes fresh availability to clients watching a date. It implements
// EventPublisher so the Service can drive it directly.
type Hub struct {
	Service *Service

	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

func NewHub(svc *Service) *Hub {
	return &Hub{Service: svc, subscribers: make(map[string][]*websocket.Conn)}
}

// GET /api/ws/availability/:date
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, err := ParseDate(ps.ByName("date"))
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	key := d.String()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.subscribers[key] = append(h.subscribers[key], conn)
	h.mu.Unlock()

	for {
		// Keeps the connection until the client goes away.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	conns := h.subscribers[key]
	kept := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(h.subscribers, key)
	} else {
		h.subscribers[key] = kept
	}
	h.mu.Unlock()

	conn.Close()
}

func (h *Hub) Publish(ctx context.Context, ev models.BookingEvent) {
	h.Refresh(ctx, ev.Date)
}

// Refresh recomputes availability for date and sends it to its subscribers.
func (h *Hub) Refresh(ctx context.Context, date string) {
	if h.subscriberCount(date) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	slots, err := h.Service.Timeslots(ctx, date)
	if err != nil {
		log.Printf("[Hub] availability for %s: %v", date, err)
		return
	}
	data, err := json.Marshal(AvailabilityUpdate{Type: "availability", Date: date, Timeslots: slots})
	if err != nil {
		log.Printf("[Hub] marshal: %v", err)
		return
	}
	h.broadcast(date, data)
}

func (h *Hub) subscriberCount(date string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[date])
}

func (h *Hub) broadcast(key string, val []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[key]
	kept := conns[:0]
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			kept = append(kept, conn)
		} else {
			conn.Close()
		}
	}
	h.subscribers[key] = kept
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, conns := range h.subscribers {
		for _, c := range conns {
			c.Close()
		}
		delete(h.subscribers, key)
	}
}
