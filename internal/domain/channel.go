package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelDirect  ChannelType = "direct"
)

// Valid reports whether t is one of the known channel types.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelPublic, ChannelPrivate, ChannelDirect:
		return true
	}
	return false
}

type Channel struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        ChannelType `json:"channel_type"`
	MemberCount int         `json:"member_count,omitempty"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	// Joined field for direct channels
	OtherUserID *uuid.UUID `json:"other_user_id,omitempty"`
}
