package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

type CreateMessageInput struct {
	Content  string           `json:"content"`
	Mentions []domain.Mention `json:"mentions,omitempty"`
}

// Messages fetches a thread's full message log, chronological.
func (c *Client) Messages(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	if err := c.do(ctx, http.MethodGet, "/api/v1/threads/"+threadID.String()+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMessage posts a message to a thread. The response carries the
// server-assigned ID and timestamp.
func (c *Client) CreateMessage(ctx context.Context, threadID uuid.UUID, input CreateMessageInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}
	var out domain.Message
	if err := c.do(ctx, http.MethodPost, "/api/v1/threads/"+threadID.String()+"/messages", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMessage edits a message's content.
func (c *Client) UpdateMessage(ctx context.Context, messageID uuid.UUID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	body := map[string]string{"content": content}
	var out domain.Message
	if err := c.do(ctx, http.MethodPatch, "/api/v1/messages/"+messageID.String(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/messages/"+messageID.String(), nil, nil)
}

// MarkAsRead acknowledges a message as the reader's latest read position.
func (c *Client) MarkAsRead(ctx context.Context, messageID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/api/v1/messages/"+messageID.String()+"/read", nil, nil)
}
