package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"postbot/internal/bot"
	"postbot/internal/config"
	"postbot/internal/eventbus"
	"postbot/internal/rest"
	"postbot/internal/runtime/supervisor"
	"postbot/internal/storage"
	telegram "postbot/internal/transport/telegram/adapter"
	logx "postbot/pkg/logx"
)

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	bot  *bot.Manager
	http *rest.Server
	addr string
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logConfig(cfg.Logging))
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	// Storage (optional)
	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log)
		if err != nil {
			return nil, err
		}
		store = st
		log.Info("storage enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	dial := telegram.Dialer(telegram.Config{
		PollTimeout: pollTimeout,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, log.With(logx.String("comp", "telegram")))

	mgr := bot.New(dial,
		bot.WithLogger(log),
		bot.WithBus(bus),
		bot.WithLocation(loc),
		bot.WithObserver(func(r bot.FireResult) {
			if r.Err != nil {
				log.Warn("scheduled post failed", logx.String("id", r.PostID), logx.String("chat", r.ChatID.String()), logx.Err(r.Err))
			}
		}),
	)

	readTimeout, err := config.ParseDurationOrDefault("http.read_timeout", cfg.HTTP.ReadTimeout, 0)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := config.ParseDurationOrDefault("http.write_timeout", cfg.HTTP.WriteTimeout, 0)
	if err != nil {
		return nil, err
	}
	srv := rest.New(mgr, rest.Options{
		Logger:       log,
		Store:        store,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	return &App{
		cfgm:  cfgm,
		log:   log,
		logs:  logSvc,
		bus:   bus,
		store: store,
		bot:   mgr,
		http:  srv,
		addr:  cfg.HTTP.ListenAddr(),
	}, nil
}

func logConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
	}
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		_, _, err := mapStorageConfig(cfg)
		return err
	})

	if a.store != nil {
		events, unsub := a.bus.Subscribe(128)
		a.sup.Go0("audit.events", func(c context.Context) {
			defer unsub()
			auditLoop(c, events, a.store, a.log.With(logx.String("comp", "audit")))
		})
	}

	a.sup.Go("http.listen", func(context.Context) error {
		return a.http.Listen(a.addr)
	})

	if cfg := a.cfgm.Get(); cfg.Telegram.AutoInit {
		token := cfg.Telegram.Token
		a.sup.Go0("bot.autoinit", func(c context.Context) {
			if err := a.bot.Initialize(c, token); err != nil {
				a.log.Error("auto init failed; use POST /api/bot/init", logx.Err(err))
			}
		})
	}

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
				for drained := false; !drained; {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						drained = true
					}
				}
				a.applyConfig(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started", logx.String("addr", a.addr))
	return nil
}

// applyConfig hot-applies logging and scheduler timezone; other sections need a restart.
func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(logConfig(newCfg.Logging))

	for _, s := range sections {
		switch s {
		case "scheduler":
			if loc, err := newCfg.Scheduler.Location(); err == nil {
				a.bot.SetLocation(loc)
				a.log.Info("scheduler timezone updated; applies from the next session", logx.String("tz", loc.String()))
			}
		case "http", "storage", "telegram":
			a.log.Warn("config section changed; restart required for changes to take effect", logx.String("section", s))
		}
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		runStep(ctx, a.log, name, max, fn)
	}

	// HTTP first so no new requests race the session teardown.
	step("http", 3*time.Second, a.http.Shutdown)
	step("bot", 3*time.Second, func(c context.Context) error {
		if err := a.bot.Stop(c); err != nil && !errors.Is(err, bot.ErrNotInitialized) {
			return err
		}
		return nil
	})

	// Cancel the run context only after the session stopped so its events still reach the audit log.
	a.sup.Cancel()
	step("supervisor", 2*time.Second, a.sup.Wait)
	step("storage", 1*time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}
