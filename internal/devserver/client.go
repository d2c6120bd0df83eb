package devserver

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/transport/ws"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// client is one live connection on the server side.
type client struct {
	hub         *hub
	conn        *websocket.Conn
	userID      uuid.UUID
	displayName string

	mu    sync.RWMutex
	rooms map[uuid.UUID]struct{}

	send chan []byte
	done chan struct{}
}

func newClient(h *hub, conn *websocket.Conn, userID uuid.UUID, displayName string) *client {
	return &client{
		hub:         h,
		conn:        conn,
		userID:      userID,
		displayName: displayName,
		rooms:       make(map[uuid.UUID]struct{}),
		send:        make(chan []byte, sendBufSize),
		done:        make(chan struct{}),
	}
}

func (c *client) inRoom(roomID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

func (c *client) inAnyRoom(roomIDs []uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range roomIDs {
		if _, ok := c.rooms[id]; ok {
			return true
		}
	}
	return false
}

func (c *client) joinRoom(roomID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *client) leaveRoom(roomID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event ws.Event
		if err := wsjson.Read(context.Background(), c.conn, &event); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}
		c.handleEvent(&event)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *client) handleEvent(event *ws.Event) {
	switch event.Type {
	case ws.EventRoomJoin:
		var p ws.RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid room.join payload")
			return
		}
		c.joinRoom(p.RoomID)

	case ws.EventRoomLeave:
		var p ws.RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid room.leave payload")
			return
		}
		c.leaveRoom(p.RoomID)

	case ws.EventTypingStart, ws.EventTypingStop:
		var p ws.TypingPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid typing payload")
			return
		}
		c.broadcastTyping(event.Type, p)

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// broadcastTyping fans a typing event out to the thread room with the
// sender identity stamped in. Both start and stop are forwarded; receivers
// clear indicators on stop rather than guessing timeouts.
func (c *client) broadcastTyping(eventType string, p ws.TypingPayload) {
	name := p.DisplayName
	if name == "" {
		name = c.displayName
	}
	evt, err := ws.NewEvent(eventType, &p.ThreadID, ws.TypingPayload{
		ThreadID:    p.ThreadID,
		UserID:      c.userID,
		DisplayName: name,
	})
	if err != nil {
		return
	}
	c.hub.broadcastEvent([]uuid.UUID{p.ThreadID}, evt, &c.userID)
}

func (c *client) sendError(code, message string) {
	evt, err := ws.NewEvent(ws.EventError, nil, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
