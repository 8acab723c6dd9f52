package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"postbot/internal/eventbus"
	"postbot/internal/runtime/supervisor"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

const defaultUpdateBuffer = 256

// Manager owns the single bot session: the platform client, the inbound dispatch loop,
// and the registry of daily posts. All methods are safe for concurrent use.
type Manager struct {
	dial     kit.Dialer
	log      logx.Logger
	bus      eventbus.Bus
	observer Observer
	dispatch Dispatcher
	newID    func() string
	now      func() time.Time
	daily    func(hhmm string) (cron.Schedule, error)
	bufSize  int

	mu        sync.Mutex
	state     State
	starting  bool
	startedAt time.Time
	client    kit.Client
	sup       *supervisor.Supervisor
	cron      *cron.Cron
	posts     map[string]*postEntry

	// loc applies to the next session; sessionLoc is frozen by Initialize.
	loc        *time.Location
	sessionLoc *time.Location
}

type Option func(*Manager)

func WithLogger(log logx.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func WithBus(bus eventbus.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithObserver installs a callback for every scheduled firing outcome.
func WithObserver(fn Observer) Option {
	return func(m *Manager) { m.observer = fn }
}

// WithDispatcher replaces the command and callback-action tables.
func WithDispatcher(d Dispatcher) Option {
	return func(m *Manager) { m.dispatch = d }
}

// WithLocation sets the wall clock that post times are read in. Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func New(dial kit.Dialer, opts ...Option) *Manager {
	m := &Manager{
		dial:     dial,
		log:      logx.Nop(),
		bus:      eventbus.Nop{},
		dispatch: DefaultDispatcher(),
		newID:    uuid.NewString,
		now:      time.Now,
		daily:    DailySchedule,
		bufSize:  defaultUpdateBuffer,
		state:    StateUninitialized,
		loc:      time.UTC,
		posts:    map[string]*postEntry{},
	}
	for _, o := range opts {
		o(m)
	}
	if m.log.IsZero() {
		m.log = logx.Nop()
	}
	if m.bus == nil {
		m.bus = eventbus.Nop{}
	}
	m.log = m.log.With(logx.String("comp", "bot"))
	return m
}

// SetLocation changes the scheduler location. A live session keeps its own; the new one
// takes effect on the next Initialize.
func (m *Manager) SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	m.mu.Lock()
	m.loc = loc
	m.mu.Unlock()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{State: m.state, Scheduled: len(m.posts), Timezone: m.loc.String()}
	if m.state == StateActive {
		st.StartedAt = m.startedAt
		st.Timezone = m.scheduleLocLocked().String()
	}
	return st
}

// scheduleLocLocked is the location posts are computed in. Requires m.mu.
func (m *Manager) scheduleLocLocked() *time.Location {
	if m.sessionLoc != nil {
		return m.sessionLoc
	}
	return m.loc
}

// Initialize opens a session with token and starts inbound dispatch and the scheduler.
// The token is never logged.
func (m *Manager) Initialize(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token is required")
	}
	if m.dial == nil {
		return fmt.Errorf("%w: no dialer configured", ErrInitialization)
	}

	m.mu.Lock()
	if m.state == StateActive || m.starting {
		m.mu.Unlock()
		return ErrAlreadyActive
	}
	m.starting = true
	loc := m.loc
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	start := time.Now()
	client, err := m.dial(ctx, token)
	if err != nil {
		m.log.Warn("initialize failed", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	// The session outlives the request that created it.
	sup := supervisor.New(context.Background(), supervisor.WithLogger(m.log))
	updates := make(chan kit.Update, m.bufSize)
	if err := client.Start(sup.Context(), updates); err != nil {
		sup.Cancel()
		m.log.Warn("client start failed", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	clog := cronLogger{log: m.log.With(logx.String("comp", "bot.cron"))}
	c := cron.New(
		cron.WithParser(dailyParser),
		cron.WithLocation(loc),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog)),
	)
	c.Start()

	sup.GoRestart("bot.dispatch", func(ctx context.Context) error {
		return m.dispatchLoop(ctx, client, updates)
	}, supervisor.WithRestartBackoff(100*time.Millisecond, 5*time.Second))

	m.mu.Lock()
	m.state = StateActive
	m.startedAt = m.now()
	m.client = client
	m.sup = sup
	m.cron = c
	m.sessionLoc = loc
	m.posts = map[string]*postEntry{}
	m.mu.Unlock()

	m.bus.Publish(eventbus.Event{Type: eventbus.TypeSessionStarted})
	m.log.Info("session started", logx.String("tz", loc.String()), logx.Duration("took", time.Since(start)))
	return nil
}

// Stop ends the session and discards every scheduled post. Teardown problems are logged;
// the session is Stopped regardless.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	client, sup, c, posts := m.client, m.sup, m.cron, m.posts
	m.state = StateStopped
	m.client, m.sup, m.cron = nil, nil, nil
	m.sessionLoc = nil
	m.posts = map[string]*postEntry{}
	m.mu.Unlock()

	start := time.Now()
	for _, e := range posts {
		e.cancelled.Store(true)
		c.Remove(e.entryID)
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		m.log.Warn("stop: in-flight posts still running", logx.Err(ctx.Err()))
	}
	if err := client.Stop(ctx); err != nil {
		m.log.Warn("stop: client", logx.Err(err))
	}
	if err := sup.Stop(ctx); err != nil {
		m.log.Warn("stop: supervisor", logx.Err(err))
	}

	m.bus.Publish(eventbus.Event{Type: eventbus.TypeSessionStopped, Data: len(posts)})
	m.log.Info("session stopped", logx.Int("discarded_posts", len(posts)), logx.Duration("took", time.Since(start)))
	return nil
}

func (m *Manager) activeClient() (kit.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive || m.client == nil {
		return nil, ErrNotInitialized
	}
	return m.client, nil
}

func (m *Manager) SendText(ctx context.Context, chat kit.ChatID, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	client, err := m.activeClient()
	if err != nil {
		return kit.MessageRef{}, err
	}
	if !chat.Valid() {
		return kit.MessageRef{}, invalid("chat id %q is not valid", chat)
	}
	if strings.TrimSpace(text) == "" {
		return kit.MessageRef{}, invalid("message text is required")
	}
	ref, err := client.SendText(ctx, chat, text, opt)
	return ref, deliveryErr("sendMessage", chat, err)
}

// SendPhoto sends an image by URL or platform file id. The caption travels in opt.
func (m *Manager) SendPhoto(ctx context.Context, chat kit.ChatID, photo string, opt *kit.SendOptions) (kit.MessageRef, error) {
	client, err := m.activeClient()
	if err != nil {
		return kit.MessageRef{}, err
	}
	if err := checkMedia(chat, photo); err != nil {
		return kit.MessageRef{}, err
	}
	ref, err := client.SendPhoto(ctx, chat, strings.TrimSpace(photo), opt)
	return ref, deliveryErr("sendPhoto", chat, err)
}

func (m *Manager) SendVideo(ctx context.Context, chat kit.ChatID, video string, opt *kit.SendOptions) (kit.MessageRef, error) {
	client, err := m.activeClient()
	if err != nil {
		return kit.MessageRef{}, err
	}
	if err := checkMedia(chat, video); err != nil {
		return kit.MessageRef{}, err
	}
	ref, err := client.SendVideo(ctx, chat, strings.TrimSpace(video), opt)
	return ref, deliveryErr("sendVideo", chat, err)
}

func (m *Manager) BotInfo(ctx context.Context) (kit.BotInfo, error) {
	client, err := m.activeClient()
	if err != nil {
		return kit.BotInfo{}, err
	}
	info, err := client.Me(ctx)
	return info, deliveryErr("getMe", "", err)
}

func (m *Manager) ChatInfo(ctx context.Context, chat kit.ChatID) (kit.ChatInfo, error) {
	client, err := m.activeClient()
	if err != nil {
		return kit.ChatInfo{}, err
	}
	if !chat.Valid() {
		return kit.ChatInfo{}, invalid("chat id %q is not valid", chat)
	}
	info, err := client.Chat(ctx, chat)
	return info, deliveryErr("getChat", chat, err)
}

func checkMedia(chat kit.ChatID, media string) error {
	if !chat.Valid() {
		return invalid("chat id %q is not valid", chat)
	}
	if strings.TrimSpace(media) == "" {
		return invalid("media url is required")
	}
	return nil
}

func (m *Manager) dispatchLoop(ctx context.Context, client kit.Client, updates <-chan kit.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case up := <-updates:
			m.handleUpdate(ctx, client, up)
		}
	}
}

func (m *Manager) handleUpdate(ctx context.Context, client kit.Client, up kit.Update) {
	switch up.Kind {
	case kit.UpdateMessage:
		msg := up.Message
		if msg == nil {
			return
		}
		reply, ok := m.dispatch.ReplyToText(Inbound{
			ChatID:   msg.ChatID,
			FromID:   msg.FromID,
			Username: msg.FromUsername,
			Key:      msg.Text,
		})
		if !ok {
			return
		}
		m.reply(ctx, client, msg.ChatID, msg.ThreadID, reply)

	case kit.UpdateCallback:
		cb := up.Callback
		if cb == nil {
			return
		}
		if err := client.AnswerCallback(ctx, cb.ID, CallbackAck); err != nil {
			m.log.Warn("answer callback failed", logx.String("callback_id", cb.ID), logx.Err(err))
		}
		// Inline-mode callbacks have no chat to reply into.
		if cb.ChatID == 0 {
			return
		}
		reply := m.dispatch.ReplyToCallback(Inbound{
			ChatID: cb.ChatID,
			FromID: cb.FromID,
			Key:    cb.Data,
		})
		m.reply(ctx, client, cb.ChatID, cb.ThreadID, reply)
	}
}

func (m *Manager) reply(ctx context.Context, client kit.Client, chatID int64, threadID int, text string) {
	if text == "" {
		return
	}
	var opt *kit.SendOptions
	if threadID != 0 {
		opt = &kit.SendOptions{ThreadID: threadID}
	}
	if _, err := client.SendText(ctx, kit.ChatIDFromInt(chatID), text, opt); err != nil {
		m.log.Warn("reply failed", logx.Int64("chat_id", chatID), logx.Err(err))
	}
}
