package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

// Event types - Server → Client
const (
	EventMessageCreated = "message.created"
	EventMessageUpdated = "message.updated"
	EventMessageDeleted = "message.deleted"
	EventThreadCreated  = "thread.created"
	EventThreadUpdated  = "thread.updated"
	EventError          = "error"
)

// Event types - Client → Server
const (
	EventRoomJoin  = "room.join"
	EventRoomLeave = "room.leave"
)

// Event types - both directions. A client sends them scoped to the thread it
// is composing in; the server fans them out to the thread room with the
// sender identity stamped in.
const (
	EventTypingStart = "typing.start"
	EventTypingStop  = "typing.stop"
)

// Event is the envelope for all frames on the live connection. RoomID scopes
// the event to a channel or thread room.
type Event struct {
	Type      string          `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type RoomPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID       uuid.UUID `json:"id"`
	ThreadID uuid.UUID `json:"thread_id"`
}

type ThreadPayload struct {
	domain.Thread
}

// TypingPayload rides typing.start and typing.stop in both directions.
// UserID and DisplayName are filled in by the server on the way out.
type TypingPayload struct {
	ThreadID    uuid.UUID `json:"thread_id"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent builds an event with the current timestamp.
func NewEvent(eventType string, roomID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		RoomID:    roomID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
