package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "postbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.audit.jsonl (append-only JSON Lines)
//
// The newest maxRecentLimit entries are kept in memory for RecentAudit.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	auditFile *os.File
	recent    []AuditEntry // ring buffer
	head      int          // next write position once full
	nextID    int64
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	auditPath := prefix + ".audit.jsonl"
	s := &fileStore{log: log, recent: make([]AuditEntry, 0, maxRecentLimit)}
	n, err := s.replay(auditPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("audit replay failed; continuing with partial history", logx.String("path", auditPath), logx.Err(err))
	}
	s.nextID = n + 1

	af, err := os.OpenFile(auditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.auditFile = af
	log.Debug("file store opened", logx.String("path", auditPath), logx.Int64("entries", n))
	return s, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditFile == nil {
		return nil
	}
	err := s.auditFile.Close()
	s.auditFile = nil
	return err
}

func (s *fileStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditFile == nil {
		return errors.New("audit file closed")
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	e.ID = s.nextID
	if err := json.NewEncoder(s.auditFile).Encode(e); err != nil {
		return err
	}
	s.nextID++
	s.pushLocked(e)
	return nil
}

func (s *fileStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	_ = ctx
	limit = clampLimit(limit)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.recent)
	if limit > n {
		limit = n
	}
	out := make([]AuditEntry, 0, limit)
	// Newest is just before head (or at the end while the ring is filling).
	last := n - 1
	if n == cap(s.recent) {
		last = (s.head - 1 + n) % n
	}
	for i := 0; i < limit; i++ {
		out = append(out, s.recent[(last-i+n)%n])
	}
	return out, nil
}

func (s *fileStore) pushLocked(e AuditEntry) {
	if len(s.recent) < cap(s.recent) {
		s.recent = append(s.recent, e)
		return
	}
	s.recent[s.head] = e
	s.head = (s.head + 1) % len(s.recent)
}

// replay loads existing entries and returns the highest id seen.
func (s *fileStore) replay(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var maxID int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		if e.ID > maxID {
			maxID = e.ID
		}
		s.pushLocked(e)
	}
	return maxID, sc.Err()
}
