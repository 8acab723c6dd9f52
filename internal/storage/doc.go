// Package storage keeps an append-only audit trail of control operations and
// scheduled post firings.
//
// Drivers:
//   - file: JSON Lines, recent entries cached in memory
//   - sqlite: single-file database (modernc.org/sqlite, no cgo)
//
// Scheduled posts themselves are never persisted; they live only as long as the
// bot session that created them.
package storage
