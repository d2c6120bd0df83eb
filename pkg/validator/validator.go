package validator

import (
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateChannel(name, channelType string) ValidationErrors {
	errs := make(ValidationErrors)

	switch channelType {
	case "public", "private", "direct":
	default:
		errs.Add("channel_type", "Channel type must be public, private or direct")
	}

	// Direct channels are named after the counterpart client-side.
	if channelType == "direct" {
		return errs
	}

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Channel name is required")
	} else if len(name) > 80 {
		errs.Add("name", "Channel name is too long")
	}

	return errs
}

func ValidateThread(title string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Thread title is required")
	} else if len(title) > 200 {
		errs.Add("title", "Thread title is too long")
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > 8000 {
		errs.Add("content", "Message is too long")
	}

	return errs
}
