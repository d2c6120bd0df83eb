package api

import (
	"net/url"
	"strings"

	"github.com/stafflyhq/chat/internal/domain"
)

// FileURL composes the download URL for an attachment's storage path. Pure
// string composition; nothing is fetched or cached here.
func (c *Client) FileURL(att domain.Attachment) string {
	return c.fileURL(att.Path)
}

// PreviewURL resolves the thumbnail when the attachment has one, otherwise
// the file itself.
func (c *Client) PreviewURL(att domain.Attachment) string {
	if att.ThumbnailPath != nil && *att.ThumbnailPath != "" {
		return c.fileURL(*att.ThumbnailPath)
	}
	return c.fileURL(att.Path)
}

func (c *Client) fileURL(path string) string {
	return c.baseURL + "/api/v1/files/" + strings.TrimLeft(path, "/") + "?token=" + url.QueryEscape(c.token)
}
