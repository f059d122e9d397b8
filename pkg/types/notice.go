package types

import (
	"github.com/google/uuid"
)

// NoticeKind classifies a user-facing notice for the storefront UI.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is an ephemeral notification handed to the frontend for display.
// Lifecycle (stacking, auto-dismiss after TTL) is the client's concern.
type Notice struct {
	ID         string     `json:"id"`
	Kind       NoticeKind `json:"kind"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	TTLSeconds int        `json:"ttl_seconds"`
}

// NewNotice mints a notice with a random token identifier.
func NewNotice(kind NoticeKind, title, message string, ttlSeconds int) Notice {
	if ttlSeconds <= 0 {
		ttlSeconds = 5
	}
	return Notice{
		ID:         uuid.NewString(),
		Kind:       kind,
		Title:      title,
		Message:    message,
		TTLSeconds: ttlSeconds,
	}
}
