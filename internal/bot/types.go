package bot

import (
	"time"

	kit "postbot/internal/transport"
)

// State is the lifecycle position of the single bot session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StateStopped       State = "stopped"
)

// PostSpec describes a daily post. Time is "HH:MM" in the scheduler location (UTC by default).
type PostSpec struct {
	ID        string        `json:"id"`
	ChatID    kit.ChatID    `json:"chatId"`
	Content   string        `json:"content"`
	MediaKind kit.MediaKind `json:"mediaType"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
	Time      string        `json:"time"`
}

// Delivery reports how a firing will deliver the post. Media without a URL falls back to text.
func (p PostSpec) Delivery() kit.MediaKind {
	switch p.MediaKind {
	case kit.MediaImage, kit.MediaVideo:
		if p.MediaURL != "" {
			return p.MediaKind
		}
	}
	return kit.MediaNone
}

// ScheduledPost is a read-only view of a registry entry.
type ScheduledPost struct {
	PostSpec
	CreatedAt time.Time `json:"createdAt"`
	NextRun   time.Time `json:"nextRun"`
	LastRun   time.Time `json:"lastRun,omitzero"`
	Fires     int       `json:"fires"`
	Failures  int       `json:"failures"`
	LastError string    `json:"lastError,omitempty"`
}

// FireResult is the outcome of one scheduled firing.
type FireResult struct {
	PostID   string         `json:"postId"`
	ChatID   kit.ChatID     `json:"chatId"`
	Delivery kit.MediaKind  `json:"delivery"`
	At       time.Time      `json:"at"`
	Took     time.Duration  `json:"took"`
	Message  kit.MessageRef `json:"message"`
	Err      error          `json:"-"`
}

func (r FireResult) OK() bool { return r.Err == nil }

// Observer receives every FireResult. It runs on the scheduler goroutine and must not block.
type Observer func(FireResult)

// Status is a point-in-time summary of the session.
type Status struct {
	State     State     `json:"state"`
	StartedAt time.Time `json:"startedAt,omitzero"`
	Scheduled int       `json:"scheduled"`
	Timezone  string    `json:"timezone"`
}
