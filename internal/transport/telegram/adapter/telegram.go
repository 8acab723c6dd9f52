package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	rtsup "postbot/internal/runtime/supervisor"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

const defaultRatePerSec = 25

// Config configures a single Telegram bot session.
type Config struct {
	Token       string
	PollTimeout time.Duration
	// RatePerSec caps outbound API calls (Telegram allows roughly 30 msg/s per bot).
	RatePerSec int
	// URL overrides the Bot API endpoint (local bot-api server, tests).
	URL string
}

type Adapter struct {
	cfg Config
	log logx.Logger

	bot *tele.Bot
	lim *rate.Limiter

	out     atomic.Value // stores (chan<- kit.Update)
	runMu   sync.Mutex
	running bool

	// sup owns adapter goroutines (poll loop, drop reporter, stop watcher).
	// Created on Start() and cancelled on Stop().
	sup *rtsup.Supervisor

	// droppedUpdates counts updates dropped because the consumer was slower than the poll loop.
	droppedUpdates uint64
}

var _ kit.Client = (*Adapter)(nil)

// New validates the token with the Bot API (getMe) and returns an adapter bound to it.
func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultRatePerSec
	}
	b, err := tele.NewBot(tele.Settings{
		URL:    cfg.URL,
		Token:  strings.TrimSpace(cfg.Token),
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, _ tele.Context) {
			log.Warn("telebot handler error", logx.Err(err))
		},
	})
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		cfg: cfg,
		log: log,
		bot: b,
		lim: rate.NewLimiter(rate.Limit(rps), rps),
	}
	var nilOut chan<- kit.Update
	a.out.Store(nilOut)
	a.registerHandlers()
	return a, nil
}

// Dialer returns a kit.Dialer that opens adapters sharing base settings.
func Dialer(base Config, log logx.Logger) kit.Dialer {
	return func(ctx context.Context, token string) (kit.Client, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg := base
		cfg.Token = token
		return New(cfg, log)
	}
}

func (a *Adapter) registerHandlers() {
	// Handlers forward to the CURRENT output channel. Start() may swap it.
	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		m := c.Message()
		if m == nil || m.Chat == nil {
			return nil
		}
		up := kit.Update{
			Kind: kit.UpdateMessage,
			Message: &kit.Message{
				ID:       m.ID,
				ChatID:   m.Chat.ID,
				ThreadID: m.ThreadID,
				Text:     m.Text,
			},
		}
		if m.Sender != nil {
			up.Message.FromID = m.Sender.ID
			up.Message.FromUsername = m.Sender.Username
		}
		a.sendUpdate(up)
		return nil
	})

	a.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil || cb.ID == "" {
			return nil
		}
		up := kit.Update{
			Kind:     kit.UpdateCallback,
			Callback: &kit.Callback{ID: cb.ID, Data: cb.Data},
		}
		// Inline-mode callbacks carry no message; ChatID stays 0.
		if m := cb.Message; m != nil && m.Chat != nil {
			up.Callback.ChatID = m.Chat.ID
			up.Callback.ThreadID = m.ThreadID
			up.Callback.MessageID = m.ID
		}
		if cb.Sender != nil {
			up.Callback.FromID = cb.Sender.ID
		}
		a.sendUpdate(up)
		return nil
	})
}

func (a *Adapter) sendUpdate(up kit.Update) {
	out, _ := a.out.Load().(chan<- kit.Update)
	if out == nil {
		return
	}
	select {
	case out <- up:
	default:
		atomic.AddUint64(&a.droppedUpdates, 1)
	}
}

func (a *Adapter) Start(ctx context.Context, out chan<- kit.Update) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return nil
	}
	a.running = true
	a.out.Store(out)
	a.sup = rtsup.New(ctx,
		rtsup.WithLogger(a.log.With(logx.String("comp", "telegram.adapter"))),
		// adapter errors should not take down the whole app
		rtsup.WithCancelOnError(false),
	)
	sup := a.sup
	a.runMu.Unlock()

	sup.Go0("updates.drop_report", func(c context.Context) {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		report := func() {
			if n := atomic.SwapUint64(&a.droppedUpdates, 0); n > 0 {
				a.log.Warn("incoming updates dropped (channel full)", logx.Uint64("count", n), logx.Int("chan_cap", cap(out)))
			}
		}
		for {
			select {
			case <-c.Done():
				report()
				return
			case <-ticker.C:
				report()
			}
		}
	})

	// telebot.Stop blocks until the poll loop acknowledges; never run it on a supervised goroutine.
	sup.Go0("telebot.stop_on_cancel", func(c context.Context) {
		<-c.Done()
		go a.bot.Stop()
	})

	// Start() is a long-running loop; restart it if it exits while the context is live.
	sup.GoRestart("telebot.poll", func(c context.Context) error {
		a.log.Info("polling started")
		a.bot.Start()
		a.log.Info("polling stopped")
		return nil
	},
		rtsup.WithRestartBackoff(500*time.Millisecond, 10*time.Second),
		rtsup.WithStopOnCleanExit(false),
	)
	return nil
}

func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	sup := a.sup
	a.sup = nil
	wasRunning := a.running
	a.running = false
	var nilOut chan<- kit.Update
	a.out.Store(nilOut)
	a.runMu.Unlock()

	if !wasRunning || sup == nil {
		a.log.Debug("telegram stop called but not running")
		return nil
	}
	a.log.Info("stopping", logx.Uint64("dropped_updates_pending", atomic.LoadUint64(&a.droppedUpdates)))
	sup.Cancel()

	// Grace window: keep shutdown snappy even if getUpdates long-poll is still waiting.
	grace := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < grace {
			grace = rem
		}
	}
	wctx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	if err := sup.Wait(wctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			a.log.Warn("telegram stop timed out", logx.Err(err))
			return nil
		}
		a.log.Debug("telegram stopped with supervisor error", logx.Err(err))
	}
	return nil
}

// recipient addresses a chat by numeric id or @username.
type recipient kit.ChatID

func (r recipient) Recipient() string { return string(r) }

func (a *Adapter) wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.lim.Wait(ctx)
}

func (a *Adapter) SendText(ctx context.Context, to kit.ChatID, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	chunks := splitTelegramText(text, telegramTextLimit, opt.ParseMode)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	var first kit.MessageRef
	for i, chunk := range chunks {
		if err := a.wait(ctx); err != nil {
			return first, err
		}
		sendOpt := sendOptions(opt)
		// Attach markup only to the first message.
		if i > 0 {
			sendOpt.ReplyMarkup = nil
		}
		msg, err := a.bot.Send(recipient(to), chunk, sendOpt)
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = kit.MessageRef{ChatID: to, MessageID: msg.ID}
		}
	}
	return first, nil
}

func (a *Adapter) SendPhoto(ctx context.Context, to kit.ChatID, media string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	if err := a.wait(ctx); err != nil {
		return kit.MessageRef{}, err
	}
	msg, err := a.bot.Send(recipient(to), &tele.Photo{File: mediaFile(media), Caption: opt.Caption}, sendOptions(opt))
	if err != nil {
		return kit.MessageRef{}, err
	}
	return kit.MessageRef{ChatID: to, MessageID: msg.ID}, nil
}

func (a *Adapter) SendVideo(ctx context.Context, to kit.ChatID, media string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	if err := a.wait(ctx); err != nil {
		return kit.MessageRef{}, err
	}
	msg, err := a.bot.Send(recipient(to), &tele.Video{File: mediaFile(media), Caption: opt.Caption}, sendOptions(opt))
	if err != nil {
		return kit.MessageRef{}, err
	}
	return kit.MessageRef{ChatID: to, MessageID: msg.ID}, nil
}

func (a *Adapter) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	if err := a.wait(ctx); err != nil {
		return err
	}
	return a.bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text})
}

func (a *Adapter) Me(ctx context.Context) (kit.BotInfo, error) {
	if ctx != nil && ctx.Err() != nil {
		return kit.BotInfo{}, ctx.Err()
	}
	me := a.bot.Me
	if me == nil {
		return kit.BotInfo{}, errors.New("bot identity unknown")
	}
	return kit.BotInfo{
		ID:              me.ID,
		IsBot:           me.IsBot,
		FirstName:       me.FirstName,
		Username:        me.Username,
		CanJoinGroups:   me.CanJoinGroups,
		CanReadMessages: me.CanReadMessages,
		SupportsInline:  me.SupportsInline,
	}, nil
}

func (a *Adapter) Chat(ctx context.Context, id kit.ChatID) (kit.ChatInfo, error) {
	if err := a.wait(ctx); err != nil {
		return kit.ChatInfo{}, err
	}
	var (
		c   *tele.Chat
		err error
	)
	if n, ok := id.Int(); ok {
		c, err = a.bot.ChatByID(n)
	} else {
		c, err = a.bot.ChatByUsername(id.String())
	}
	if err != nil {
		return kit.ChatInfo{}, err
	}
	return kit.ChatInfo{
		ID:        c.ID,
		Type:      string(c.Type),
		Title:     c.Title,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, nil
}

func sendOptions(opt *kit.SendOptions) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              opt.ThreadID,
		ReplyMarkup:           replyMarkup(opt.Keyboard),
	}
}

func replyMarkup(rows [][]kit.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	rm := &tele.ReplyMarkup{}
	for _, row := range rows {
		btns := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tele.InlineButton{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		rm.InlineKeyboard = append(rm.InlineKeyboard, btns)
	}
	return rm
}

// mediaFile maps a media reference to a telebot file: http(s) URLs are fetched by
// Telegram, anything else is treated as an already uploaded file_id.
func mediaFile(ref string) tele.File {
	ref = strings.TrimSpace(ref)
	low := strings.ToLower(ref)
	if strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://") {
		return tele.FromURL(ref)
	}
	return tele.File{FileID: ref}
}
