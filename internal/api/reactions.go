package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// AddReaction attaches an emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, messageID uuid.UUID, emoji string) error {
	body := map[string]string{"emoji": emoji}
	return c.do(ctx, http.MethodPost, "/api/v1/messages/"+messageID.String()+"/reactions", body, nil)
}
