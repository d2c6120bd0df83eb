package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageStatus is the local delivery state of a log entry. Entries decoded
// from the wire are always confirmed; pending and failed only ever describe
// an optimistic append that has not been acknowledged yet.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusConfirmed MessageStatus = "confirmed"
	StatusFailed    MessageStatus = "failed"
)

type Mention struct {
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"type"`
}

type Message struct {
	ID          uuid.UUID    `json:"id"`
	ThreadID    uuid.UUID    `json:"thread_id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	Content     string       `json:"content"`
	Mentions    []Mention    `json:"mentions,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	EditedAt    *time.Time   `json:"edited_at,omitempty"`
	// Joined fields
	SenderName  string `json:"sender_name,omitempty"`
	SenderEmail string `json:"sender_email,omitempty"`

	Status MessageStatus `json:"-"`
}
