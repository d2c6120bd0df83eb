package devserver

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/transport/ws"
)

// hub tracks active live connections and fans events out to room members.
type hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client // userID -> client

	register   chan *client
	unregister chan *client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	// rooms the event is scoped to; a client subscribed to any of them
	// receives it once.
	rooms     []uuid.UUID
	data      []byte
	excludeID *uuid.UUID
}

func newHub() *hub {
	return &hub{
		clients:    make(map[uuid.UUID]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.userID] = c
			h.mu.Unlock()
			log.Printf("hub: user %s connected", c.userID)

		case c := <-h.unregister:
			h.mu.Lock()
			// A reconnect may have replaced this user's entry already;
			// only evict the exact connection that is going away.
			if cur, ok := h.clients[c.userID]; ok && cur == c {
				delete(h.clients, c.userID)
			}
			close(c.send)
			close(c.done)
			h.mu.Unlock()
			log.Printf("hub: user %s disconnected", c.userID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				if msg.excludeID != nil && c.userID == *msg.excludeID {
					continue
				}
				if !c.inAnyRoom(msg.rooms) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// Buffer full - drop the frame rather than the
					// connection; the dev server has no backpressure story.
					log.Printf("hub: dropping frame for slow client %s", c.userID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// broadcastEvent sends an event to every subscriber of any of the rooms.
func (h *hub) broadcastEvent(rooms []uuid.UUID, event *ws.Event, excludeUserID *uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{rooms: rooms, data: data, excludeID: excludeUserID}
}

// subscribed reports whether a connected user has joined a room. Used by
// tests to wait for join frames to land.
func (h *hub) subscribed(userID, roomID uuid.UUID) bool {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.inRoom(roomID)
}
