package app

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"postbot/internal/bot"
	"postbot/internal/eventbus"
	"postbot/internal/storage"
	logx "postbot/pkg/logx"
)

const auditAppendTimeout = 2 * time.Second

// auditEntry converts a bus event into an audit row. Events the API layer already
// records (schedule/cancel) are skipped.
func auditEntry(e eventbus.Event) (storage.AuditEntry, bool) {
	switch e.Type {
	case eventbus.TypePostFired:
		res, ok := e.Data.(bot.FireResult)
		if !ok {
			return storage.AuditEntry{}, false
		}
		out := storage.AuditEntry{
			At:     res.At,
			Source: storage.SourceScheduler,
			Action: "fire",
			ChatID: res.ChatID.String(),
			PostID: res.PostID,
			OK:     res.OK(),
			TookMS: res.Took.Milliseconds(),
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		meta := map[string]any{"delivery": res.Delivery}
		if res.OK() {
			meta["messageId"] = res.Message.MessageID
		}
		if b, err := json.Marshal(meta); err == nil {
			out.MetaJSON = string(b)
		}
		return out, true
	case eventbus.TypeSessionStarted:
		return storage.AuditEntry{At: e.Time, Source: storage.SourceSession, Action: "session-start", OK: true}, true
	case eventbus.TypeSessionStopped:
		out := storage.AuditEntry{At: e.Time, Source: storage.SourceSession, Action: "session-stop", OK: true}
		if n, ok := e.Data.(int); ok {
			out.MetaJSON = `{"discardedPosts":` + strconv.Itoa(n) + `}`
		}
		return out, true
	default:
		return storage.AuditEntry{}, false
	}
}

// auditLoop persists session and firing events until ctx is done or the bus closes the channel.
func auditLoop(ctx context.Context, events <-chan eventbus.Event, store storage.Store, log logx.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			entry, ok := auditEntry(e)
			if !ok {
				continue
			}
			actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditAppendTimeout)
			if err := store.AppendAudit(actx, entry); err != nil {
				log.Warn("audit append failed", logx.String("action", entry.Action), logx.Err(err))
			}
			cancel()
		}
	}
}
