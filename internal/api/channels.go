package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

type CreateChannelInput struct {
	Name        string             `json:"name"`
	Type        domain.ChannelType `json:"channel_type"`
	OtherUserID *uuid.UUID         `json:"other_user_id,omitempty"`
}

// Channels lists every channel the current user can see.
func (c *Client) Channels(ctx context.Context) ([]domain.Channel, error) {
	var out []domain.Channel
	if err := c.do(ctx, http.MethodGet, "/api/v1/channels", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChannel creates a group or direct channel. The response is
// authoritative; callers append it to their cached directory instead of
// re-fetching.
func (c *Client) CreateChannel(ctx context.Context, input CreateChannelInput) (*domain.Channel, error) {
	if input.Type == domain.ChannelDirect {
		if input.OtherUserID == nil {
			return nil, ErrMissingCounter
		}
	} else if strings.TrimSpace(input.Name) == "" {
		return nil, ErrEmptyName
	}

	var out domain.Channel
	if err := c.do(ctx, http.MethodPost, "/api/v1/channels", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddMember adds a user to a channel with the given role.
func (c *Client) AddMember(ctx context.Context, channelID, userID uuid.UUID, role string) error {
	body := map[string]string{"user_id": userID.String(), "role": role}
	return c.do(ctx, http.MethodPost, "/api/v1/channels/"+channelID.String()+"/members", body, nil)
}
