package entity

import (
	"errors"
	"time"
)

var ErrUnknownEventType = errors.New("unknown post event type")

// Notification is one line of the admin activity feed.
type Notification struct {
	Type       string    `json:"type"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title,omitempty"`
	AuthorID   string    `json:"author_id,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
