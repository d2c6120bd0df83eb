package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Attachment struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"file_name"`
	Path          string    `json:"path"`
	Size          int64     `json:"size"`
	MimeType      string    `json:"mime_type"`
	ThumbnailPath *string   `json:"thumbnail_path,omitempty"`
}

// Icon maps the attachment's MIME type onto the icon class the file view
// renders.
func (a Attachment) Icon() string {
	switch {
	case strings.HasPrefix(a.MimeType, "image/"):
		return "image"
	case strings.HasPrefix(a.MimeType, "video/"):
		return "video"
	case strings.HasPrefix(a.MimeType, "audio/"):
		return "audio"
	case a.MimeType == "application/pdf":
		return "pdf"
	case strings.HasPrefix(a.MimeType, "text/"):
		return "document"
	}
	return "file"
}
