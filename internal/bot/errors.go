package bot

import (
	"errors"
	"fmt"

	kit "postbot/internal/transport"
)

var (
	// ErrNotInitialized is returned by send/schedule operations outside the Active state.
	ErrNotInitialized = errors.New("bot not initialized")
	// ErrAlreadyActive is returned by Initialize while a session is running; Stop it first.
	ErrAlreadyActive = errors.New("bot already running")
	// ErrInitialization wraps a rejected token or a failed client start.
	ErrInitialization = errors.New("bot initialization failed")
	// ErrDelivery matches every *DeliveryError.
	ErrDelivery       = errors.New("delivery failed")
	ErrPostNotFound   = errors.New("scheduled post not found")
	ErrDuplicatePost  = errors.New("scheduled post already exists")
	ErrInvalidRequest = errors.New("invalid request")
)

// DeliveryError carries whatever the transport reported for a single platform call.
// It is surfaced to the caller as-is; nothing retries it.
type DeliveryError struct {
	Op   string
	Chat kit.ChatID
	Err  error
}

func (e *DeliveryError) Error() string {
	if e.Chat != "" {
		return fmt.Sprintf("%s to %s: %v", e.Op, e.Chat, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
