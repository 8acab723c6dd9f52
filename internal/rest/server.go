package rest

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"postbot/internal/bot"
	"postbot/internal/storage"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_bot_service.go postbot/internal/rest BotService

// BotService is the session manager as seen by the HTTP layer.
type BotService interface {
	Initialize(ctx context.Context, token string) error
	Stop(ctx context.Context) error
	Status() bot.Status

	SendText(ctx context.Context, chat kit.ChatID, text string, opt *kit.SendOptions) (kit.MessageRef, error)
	SendPhoto(ctx context.Context, chat kit.ChatID, photo string, opt *kit.SendOptions) (kit.MessageRef, error)
	SendVideo(ctx context.Context, chat kit.ChatID, video string, opt *kit.SendOptions) (kit.MessageRef, error)

	SchedulePost(spec bot.PostSpec) (bot.ScheduledPost, error)
	CancelScheduledPost(id string) error
	ScheduledPosts() []bot.ScheduledPost

	BotInfo(ctx context.Context) (kit.BotInfo, error)
	ChatInfo(ctx context.Context, chat kit.ChatID) (kit.ChatInfo, error)
}

type Options struct {
	Logger       logx.Logger
	Store        storage.Store // optional audit trail
	CORSOrigins  string        // comma-separated; "" or "*" allows any origin
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Now          func() time.Time
}

// Server is the HTTP control surface.
type Server struct {
	app *fiber.App
	log logx.Logger
}

func New(svc BotService, opt Options) *Server {
	log := opt.Logger
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "rest"))
	now := opt.Now
	if now == nil {
		now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "postbot",
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
		ReadTimeout:           opt.ReadTimeout,
		WriteTimeout:          opt.WriteTimeout,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true, StackTraceHandler: stackTraceLogger(log)}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(opt.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger(log))

	h := &Handler{svc: svc, store: opt.Store, log: log, now: now}
	h.Register(app)

	return &Server{app: app, log: log}
}

func (s *Server) App() *fiber.App { return s.app }

// Listen blocks until the server stops.
func (s *Server) Listen(addr string) error {
	s.log.Info("http listening", logx.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func corsOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "*" {
			return "*"
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ", ")
}
