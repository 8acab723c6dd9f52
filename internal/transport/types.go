package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_client.go postbot/internal/transport Client

type UpdateKind string

const (
	UpdateMessage  UpdateKind = "message"
	UpdateCallback UpdateKind = "callback"
)

type Update struct {
	Kind     UpdateKind
	Message  *Message
	Callback *Callback
}

type Message struct {
	ID           int
	ChatID       int64
	ThreadID     int // telegram forum topic thread id (0 if none)
	FromID       int64
	FromUsername string
	Text         string
}

// Callback is a button press. ChatID is 0 for inline-mode messages.
type Callback struct {
	ID        string
	FromID    int64
	ChatID    int64
	ThreadID  int
	MessageID int
	Data      string
}

// ChatID addresses a conversation: a numeric id ("123", "-100123...") or a
// public username ("@channel"). JSON accepts both numbers and strings.
type ChatID string

func ChatIDFromInt(id int64) ChatID { return ChatID(strconv.FormatInt(id, 10)) }

func (c ChatID) String() string { return string(c) }

// Int returns the numeric form, if any.
func (c ChatID) Int() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(c)), 10, 64)
	return n, err == nil
}

func (c ChatID) Valid() bool {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return false
	}
	if _, ok := c.Int(); ok {
		return true
	}
	return strings.HasPrefix(s, "@") && len(s) > 1 && !strings.ContainsAny(s, " \t\n")
}

func (c *ChatID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ChatID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("chat id must be a number or string: %w", err)
	}
	id, err := n.Int64()
	if err != nil {
		return fmt.Errorf("chat id must be an integer: %w", err)
	}
	*c = ChatIDFromInt(id)
	return nil
}

type MessageRef struct {
	ChatID    ChatID `json:"chatId"`
	MessageID int    `json:"messageId"`
}

// MediaKind selects how a post body is delivered.
type MediaKind string

const (
	MediaNone  MediaKind = "none"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", MediaNone:
		return MediaNone, nil
	case MediaImage, "photo":
		return MediaImage, nil
	case MediaVideo:
		return MediaVideo, nil
	default:
		return "", fmt.Errorf("unsupported media type %q", s)
	}
}

// Button is one inline keyboard button. Exactly one of Data or URL is expected.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data,omitempty"`
	URL  string `json:"url,omitempty"`
}

type SendOptions struct {
	ParseMode      string     `json:"parse_mode,omitempty"`
	DisablePreview bool       `json:"disable_web_page_preview,omitempty"`
	Caption        string     `json:"caption,omitempty"`
	ThreadID       int        `json:"message_thread_id,omitempty"`
	Keyboard       [][]Button `json:"inline_keyboard,omitempty"`
}

type BotInfo struct {
	ID              int64  `json:"id"`
	IsBot           bool   `json:"is_bot"`
	FirstName       string `json:"first_name"`
	Username        string `json:"username,omitempty"`
	CanJoinGroups   bool   `json:"can_join_groups"`
	CanReadMessages bool   `json:"can_read_all_group_messages"`
	SupportsInline  bool   `json:"supports_inline_queries"`
}

type ChatInfo struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Client is one live session with the messaging platform.
type Client interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatID, text string, opt *SendOptions) (MessageRef, error)
	SendPhoto(ctx context.Context, to ChatID, media string, opt *SendOptions) (MessageRef, error)
	SendVideo(ctx context.Context, to ChatID, media string, opt *SendOptions) (MessageRef, error)
	AnswerCallback(ctx context.Context, callbackID string, text string) error

	Me(ctx context.Context) (BotInfo, error)
	Chat(ctx context.Context, id ChatID) (ChatInfo, error)
}

// Dialer opens a Client bound to token. A rejected token is reported as an error.
type Dialer func(ctx context.Context, token string) (Client, error)
