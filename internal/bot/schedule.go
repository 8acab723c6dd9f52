package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"postbot/internal/eventbus"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

// fireTimeout bounds a single scheduled delivery.
const fireTimeout = 60 * time.Second

var dailyParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// DailySchedule returns a schedule firing once per day at hhmm. The location comes from
// the time passed to Next, which the cron runner sets to its own location.
func DailySchedule(hhmm string) (cron.Schedule, error) {
	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return nil, err
	}
	return dailyParser.Parse(fmt.Sprintf("%d %d * * *", m, h))
}

type postEntry struct {
	post     PostSpec
	created  time.Time
	schedule cron.Schedule
	entryID  cron.EntryID
	client   kit.Client

	cancelled atomic.Bool

	mu       sync.Mutex
	fires    int
	failures int
	lastRun  time.Time
	lastErr  string
}

func (e *postEntry) record(res FireResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fires++
	e.lastRun = res.At
	if res.Err != nil {
		e.failures++
		e.lastErr = res.Err.Error()
	} else {
		e.lastErr = ""
	}
}

func (e *postEntry) snapshot(next time.Time) ScheduledPost {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ScheduledPost{
		PostSpec:  e.post,
		CreatedAt: e.created,
		NextRun:   next,
		LastRun:   e.lastRun,
		Fires:     e.fires,
		Failures:  e.failures,
		LastError: e.lastErr,
	}
}

// SchedulePost registers a daily post. An empty ID gets a generated one; a taken ID is rejected.
func (m *Manager) SchedulePost(spec PostSpec) (ScheduledPost, error) {
	if _, err := m.activeClient(); err != nil {
		return ScheduledPost{}, err
	}
	spec, sched, err := m.normalizePost(spec)
	if err != nil {
		return ScheduledPost{}, err
	}

	m.mu.Lock()
	if m.state != StateActive || m.cron == nil {
		m.mu.Unlock()
		return ScheduledPost{}, ErrNotInitialized
	}
	if _, ok := m.posts[spec.ID]; ok {
		m.mu.Unlock()
		return ScheduledPost{}, fmt.Errorf("%w: %s", ErrDuplicatePost, spec.ID)
	}
	e := &postEntry{post: spec, created: m.now(), schedule: sched, client: m.client}
	e.entryID = m.cron.Schedule(sched, cron.FuncJob(func() { m.fire(e) }))
	m.posts[spec.ID] = e
	loc := m.scheduleLocLocked()
	m.mu.Unlock()

	out := e.snapshot(sched.Next(m.now().In(loc)))
	m.bus.Publish(eventbus.Event{Type: eventbus.TypePostScheduled, Data: out})
	m.log.Info("post scheduled",
		logx.String("id", spec.ID),
		logx.String("chat", spec.ChatID.String()),
		logx.String("at", spec.Time),
		logx.String("delivery", string(spec.Delivery())),
		logx.Time("next", out.NextRun),
	)
	return out, nil
}

// CancelScheduledPost removes a post. A firing already in progress is not interrupted.
func (m *Manager) CancelScheduledPost(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("post id is required")
	}
	m.mu.Lock()
	e, ok := m.posts[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	delete(m.posts, id)
	c := m.cron
	m.mu.Unlock()

	e.cancelled.Store(true)
	if c != nil {
		c.Remove(e.entryID)
	}
	m.bus.Publish(eventbus.Event{Type: eventbus.TypePostCancelled, Data: e.post})
	m.log.Info("post cancelled", logx.String("id", id))
	return nil
}

// ScheduledPosts lists the registry ordered by ID.
func (m *Manager) ScheduledPosts() []ScheduledPost {
	m.mu.Lock()
	c := m.cron
	loc := m.scheduleLocLocked()
	entries := make([]*postEntry, 0, len(m.posts))
	for _, e := range m.posts {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	now := m.now().In(loc)
	out := make([]ScheduledPost, 0, len(entries))
	for _, e := range entries {
		var next time.Time
		if c != nil {
			next = c.Entry(e.entryID).Next
		}
		if next.IsZero() {
			next = e.schedule.Next(now)
		}
		out = append(out, e.snapshot(next))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) normalizePost(spec PostSpec) (PostSpec, cron.Schedule, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		spec.ID = m.newID()
	}
	if !spec.ChatID.Valid() {
		return spec, nil, invalid("chat id %q is not valid", spec.ChatID)
	}
	kind, err := kit.ParseMediaKind(string(spec.MediaKind))
	if err != nil {
		return spec, nil, invalid("%v", err)
	}
	spec.MediaKind = kind
	spec.MediaURL = strings.TrimSpace(spec.MediaURL)
	if spec.Delivery() == kit.MediaNone && strings.TrimSpace(spec.Content) == "" {
		return spec, nil, invalid("content is required for text posts")
	}
	h, mm, err := parseHHMM(spec.Time)
	if err != nil {
		return spec, nil, invalid("%v", err)
	}
	spec.Time = fmt.Sprintf("%02d:%02d", h, mm)
	sched, err := m.daily(spec.Time)
	if err != nil {
		return spec, nil, invalid("%v", err)
	}
	return spec, sched, nil
}

// fire makes exactly one delivery attempt. Failures are reported, never retried.
func (m *Manager) fire(e *postEntry) {
	if e.cancelled.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	at := m.now()
	began := time.Now()
	ref, err := deliver(ctx, e.client, e.post)
	res := FireResult{
		PostID:   e.post.ID,
		ChatID:   e.post.ChatID,
		Delivery: e.post.Delivery(),
		At:       at,
		Took:     time.Since(began),
		Message:  ref,
		Err:      err,
	}
	e.record(res)

	if err != nil {
		m.log.Warn("scheduled post failed", logx.String("id", res.PostID), logx.String("chat", res.ChatID.String()), logx.Err(err))
	} else {
		m.log.Info("scheduled post sent", logx.String("id", res.PostID), logx.Int("message_id", ref.MessageID), logx.Duration("took", res.Took))
	}
	if m.observer != nil {
		m.observer(res)
	}
	m.bus.Publish(eventbus.Event{Type: eventbus.TypePostFired, Time: at, Data: res})
}

func deliver(ctx context.Context, client kit.Client, p PostSpec) (kit.MessageRef, error) {
	switch p.Delivery() {
	case kit.MediaImage:
		ref, err := client.SendPhoto(ctx, p.ChatID, p.MediaURL, &kit.SendOptions{Caption: p.Content})
		return ref, deliveryErr("sendPhoto", p.ChatID, err)
	case kit.MediaVideo:
		ref, err := client.SendVideo(ctx, p.ChatID, p.MediaURL, &kit.SendOptions{Caption: p.Content})
		return ref, deliveryErr("sendVideo", p.ChatID, err)
	default:
		ref, err := client.SendText(ctx, p.ChatID, p.Content, nil)
		return ref, deliveryErr("sendMessage", p.ChatID, err)
	}
}

func deliveryErr(op string, chat kit.ChatID, err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Op: op, Chat: chat, Err: err}
}

func parseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := atoiDigits(parts[0])
	if err != nil || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := atoiDigits(parts[1])
	if err != nil || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

// atoiDigits accepts one or two ASCII digits only, no sign or spaces.
func atoiDigits(s string) (int, error) {
	if s == "" || len(s) > 2 {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
