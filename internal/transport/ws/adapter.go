package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait     = 10 * time.Second
	reconnectBase = 200 * time.Millisecond
	reconnectMax  = 10 * time.Second
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Handler receives decoded push events. Callbacks run on the adapter's read
// loop, one at a time.
type Handler interface {
	OnMessageCreated(msg domain.Message)
	OnMessageUpdated(msg domain.Message)
	OnMessageDeleted(threadID, messageID uuid.UUID)
	OnThreadCreated(th domain.Thread)
	OnThreadUpdated(th domain.Thread)
	OnTypingStart(threadID, userID uuid.UUID, displayName string)
	OnTypingStop(threadID, userID uuid.UUID)
}

// Adapter maintains the session's live connection. It remembers the set of
// joined rooms across drops: after a reconnect it re-issues room.join for
// every room the caller had joined, so subscribers keep receiving events
// without doing anything. Join calls made while the connection is still
// coming up are flushed once it is established.
type Adapter struct {
	url     string
	token   string
	handler Handler

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	rooms  map[uuid.UUID]struct{}
	closed bool

	// writeMu serializes frames onto the connection.
	writeMu sync.Mutex
}

func NewAdapter(url, token string, handler Handler) *Adapter {
	return &Adapter{
		url:     url,
		token:   token,
		handler: handler,
		rooms:   make(map[uuid.UUID]struct{}),
	}
}

// Connect dials the live endpoint and starts the read loop. Idempotent:
// calling it while connecting or connected is a no-op.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.state != Disconnected {
		a.mu.Unlock()
		return nil
	}
	a.state = Connecting
	a.closed = false
	a.mu.Unlock()

	conn, err := a.dial(ctx)
	if err != nil {
		a.mu.Lock()
		a.state = Disconnected
		a.mu.Unlock()
		return err
	}
	if !a.attach(conn) {
		return nil
	}
	go a.readLoop(conn)
	return nil
}

// Close tears the connection down for good. No reconnection follows.
func (a *Adapter) Close() {
	a.mu.Lock()
	a.closed = true
	a.state = Disconnected
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Adapter) IsConnected() bool {
	return a.State() == Connected
}

// Join subscribes to a channel or thread room. Idempotent: joining a room
// twice keeps a single membership. If the connection is not up yet the join
// is queued and flushed on (re)connect.
func (a *Adapter) Join(roomID uuid.UUID) {
	a.mu.Lock()
	if _, ok := a.rooms[roomID]; ok {
		a.mu.Unlock()
		return
	}
	a.rooms[roomID] = struct{}{}
	state := a.state
	a.mu.Unlock()

	if state == Connected {
		a.writeEvent(EventRoomJoin, &roomID, RoomPayload{RoomID: roomID})
	}
}

// Leave unsubscribes from a room. A single leave undoes any number of joins;
// leaving a never-joined room is a no-op.
func (a *Adapter) Leave(roomID uuid.UUID) {
	a.mu.Lock()
	if _, ok := a.rooms[roomID]; !ok {
		a.mu.Unlock()
		return
	}
	delete(a.rooms, roomID)
	state := a.state
	a.mu.Unlock()

	if state == Connected {
		a.writeEvent(EventRoomLeave, &roomID, RoomPayload{RoomID: roomID})
	}
}

// Rooms returns the set of rooms the caller is joined to.
func (a *Adapter) Rooms() []uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]uuid.UUID, 0, len(a.rooms))
	for id := range a.rooms {
		out = append(out, id)
	}
	return out
}

// StartTyping tells the thread room the local user is composing. Dropped
// when the connection is down; typing indicators are best-effort.
func (a *Adapter) StartTyping(threadID uuid.UUID, displayName string) {
	a.writeEvent(EventTypingStart, &threadID, TypingPayload{ThreadID: threadID, DisplayName: displayName})
}

func (a *Adapter) StopTyping(threadID uuid.UUID) {
	a.writeEvent(EventTypingStop, &threadID, TypingPayload{ThreadID: threadID})
}

func (a *Adapter) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, a.url+"?token="+a.token, nil)
	return conn, err
}

// attach installs a fresh connection and replays room.join for every
// remembered room. If Close landed while the dial was in flight the
// connection is discarded instead of installed; Close stays terminal.
// Reports whether the connection was installed.
func (a *Adapter) attach(conn *websocket.Conn) bool {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		return false
	}
	a.conn = conn
	a.state = Connected
	rooms := make([]uuid.UUID, 0, len(a.rooms))
	for id := range a.rooms {
		rooms = append(rooms, id)
	}
	a.mu.Unlock()

	for _, id := range rooms {
		roomID := id
		a.writeEvent(EventRoomJoin, &roomID, RoomPayload{RoomID: roomID})
	}
	return true
}

func (a *Adapter) readLoop(conn *websocket.Conn) {
	for {
		var evt Event
		if err := wsjson.Read(context.Background(), conn, &evt); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			a.mu.Lock()
			if a.closed {
				a.mu.Unlock()
				return
			}
			a.state = Connecting
			a.conn = nil
			a.mu.Unlock()
			log.Printf("ws: connection dropped: %v", err)
			a.reconnect()
			return
		}
		a.dispatch(&evt)
	}
}

func (a *Adapter) reconnect() {
	backoff := reconnectBase
	for {
		a.mu.Lock()
		closed := a.closed
		a.mu.Unlock()
		if closed {
			return
		}

		conn, err := a.dial(context.Background())
		if err == nil {
			if !a.attach(conn) {
				return
			}
			go a.readLoop(conn)
			log.Printf("ws: reconnected")
			return
		}

		log.Printf("ws: reconnect failed: %v", err)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (a *Adapter) dispatch(evt *Event) {
	switch evt.Type {
	case EventMessageCreated:
		var p MessagePayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnMessageCreated(p.Message)

	case EventMessageUpdated:
		var p MessagePayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnMessageUpdated(p.Message)

	case EventMessageDeleted:
		var p MessageDeletedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnMessageDeleted(p.ThreadID, p.ID)

	case EventThreadCreated:
		var p ThreadPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnThreadCreated(p.Thread)

	case EventThreadUpdated:
		var p ThreadPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnThreadUpdated(p.Thread)

	case EventTypingStart:
		var p TypingPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnTypingStart(p.ThreadID, p.UserID, p.DisplayName)

	case EventTypingStop:
		var p TypingPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			log.Printf("ws: bad %s payload: %v", evt.Type, err)
			return
		}
		a.handler.OnTypingStop(p.ThreadID, p.UserID)

	case EventError:
		var p ErrorPayload
		if err := json.Unmarshal(evt.Payload, &p); err == nil {
			log.Printf("ws: server error %s: %s", p.Code, p.Message)
		}

	default:
		log.Printf("ws: unknown event type %q", evt.Type)
	}
}

func (a *Adapter) writeEvent(eventType string, roomID *uuid.UUID, payload any) {
	evt, err := NewEvent(eventType, roomID, payload)
	if err != nil {
		log.Printf("ws: marshal %s: %v", eventType, err)
		return
	}

	a.mu.Lock()
	conn, state := a.conn, a.state
	a.mu.Unlock()
	if state != Connected || conn == nil {
		return
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := wsjson.Write(ctx, conn, evt); err != nil {
		log.Printf("ws: write %s: %v", eventType, err)
		// A frame that cannot be written may leave the server's view of the
		// room set behind ours. Kill the connection; the reconnect replay
		// restores consistency.
		conn.Close(websocket.StatusInternalError, "write failed")
	}
}
