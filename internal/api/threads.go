package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

// Threads lists a channel's threads, most recent activity first.
func (c *Client) Threads(ctx context.Context, channelID uuid.UUID) ([]domain.Thread, error) {
	var out []domain.Thread
	if err := c.do(ctx, http.MethodGet, "/api/v1/channels/"+channelID.String()+"/threads", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateThread starts a new thread in a channel.
func (c *Client) CreateThread(ctx context.Context, channelID uuid.UUID, title string) (*domain.Thread, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	body := map[string]string{"title": title}
	var out domain.Thread
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels/"+channelID.String()+"/threads", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
