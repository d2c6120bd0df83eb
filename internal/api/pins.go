package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// PinMessage pins a message to its channel.
func (c *Client) PinMessage(ctx context.Context, messageID, channelID uuid.UUID) error {
	body := map[string]string{"message_id": messageID.String()}
	return c.do(ctx, http.MethodPost, "/api/v1/channels/"+channelID.String()+"/pins", body, nil)
}
