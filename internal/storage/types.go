package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Audit sources.
const (
	SourceAPI       = "api"
	SourceScheduler = "scheduler"
	SourceSession   = "session"
)

// AuditEntry records one operation.
// Keep it compact and schema-stable.
type AuditEntry struct {
	ID       int64     `json:"id,omitempty"`
	At       time.Time `json:"at"`
	Source   string    `json:"source"`
	Action   string    `json:"action"`
	ChatID   string    `json:"chatId,omitempty"`
	PostID   string    `json:"postId,omitempty"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	TookMS   int64     `json:"tookMs,omitempty"`
	MetaJSON string    `json:"meta,omitempty"`
}

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 1000
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
