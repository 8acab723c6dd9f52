package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"postbot/internal/bot"
	"postbot/internal/storage"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type Handler struct {
	svc   BotService
	store storage.Store
	log   logx.Logger
	now   func() time.Time
}

func (h *Handler) Register(app fiber.Router) {
	app.Get("/api/health", h.Health)

	g := app.Group("/api/bot")
	g.Post("/init", h.Init)
	g.Get("/status", h.Status)
	g.Post("/send-message", h.SendMessage)
	g.Post("/send-photo", h.SendPhoto)
	g.Post("/send-video", h.SendVideo)
	g.Post("/schedule-post", h.SchedulePost)
	g.Get("/schedule-posts", h.ScheduledPosts)
	g.Delete("/schedule-post/:id", h.CancelScheduledPost)
	g.Get("/info", h.Info)
	g.Get("/chat/:chatId", h.Chat)
	g.Post("/stop", h.Stop)
	g.Get("/audit", h.Audit)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(timestampLayout),
	})
}

func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := validateInit(req); err != nil {
		return err
	}
	start := time.Now()
	err := h.svc.Initialize(c.UserContext(), req.Token)
	h.audit(c, "init", "", "", start, err)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Bot initialized successfully"})
}

func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "status": h.svc.Status()})
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := validateSendMessage(&req); err != nil {
		return err
	}
	start := time.Now()
	ref, err := h.svc.SendText(c.UserContext(), req.ChatID, req.Text, req.Options)
	h.audit(c, "send-message", req.ChatID.String(), "", start, err)
	if err != nil {
		return err
	}
	return sent(c, ref)
}

func (h *Handler) SendPhoto(c *fiber.Ctx) error {
	var req sendPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := validateSendPhoto(&req); err != nil {
		return err
	}
	start := time.Now()
	ref, err := h.svc.SendPhoto(c.UserContext(), req.ChatID, req.Photo, req.Options)
	h.audit(c, "send-photo", req.ChatID.String(), "", start, err)
	if err != nil {
		return err
	}
	return sent(c, ref)
}

func (h *Handler) SendVideo(c *fiber.Ctx) error {
	var req sendVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := validateSendVideo(&req); err != nil {
		return err
	}
	start := time.Now()
	ref, err := h.svc.SendVideo(c.UserContext(), req.ChatID, req.Video, req.Options)
	h.audit(c, "send-video", req.ChatID.String(), "", start, err)
	if err != nil {
		return err
	}
	return sent(c, ref)
}

func (h *Handler) SchedulePost(c *fiber.Ctx) error {
	var req schedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := validateSchedulePost(&req); err != nil {
		return err
	}
	start := time.Now()
	post, err := h.svc.SchedulePost(req.spec())
	id := req.ID
	if err == nil {
		id = post.ID
	}
	h.audit(c, "schedule-post", req.ChatID.String(), id, start, err)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post scheduled successfully",
		"id":      post.ID,
		"post":    post,
	})
}

func (h *Handler) ScheduledPosts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "posts": h.svc.ScheduledPosts()})
}

func (h *Handler) CancelScheduledPost(c *fiber.Ctx) error {
	id := c.Params("id")
	start := time.Now()
	err := h.svc.CancelScheduledPost(id)
	h.audit(c, "cancel-post", "", id, start, err)
	if errors.Is(err, bot.ErrPostNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Scheduled post not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Scheduled post cancelled"})
}

func (h *Handler) Info(c *fiber.Ctx) error {
	info, err := h.svc.BotInfo(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "botInfo": info})
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	chat := kit.ChatID(c.Params("chatId"))
	if !chat.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "chatId: must be a numeric chat id or @username")
	}
	info, err := h.svc.ChatInfo(c.UserContext(), chat)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "chatInfo": info})
}

func (h *Handler) Stop(c *fiber.Ctx) error {
	start := time.Now()
	err := h.svc.Stop(c.UserContext())
	h.audit(c, "stop", "", "", start, err)
	if errors.Is(err, bot.ErrNotInitialized) {
		return fiber.NewError(fiber.StatusConflict, "Bot not running")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Bot stopped successfully"})
}

func (h *Handler) Audit(c *fiber.Ctx) error {
	if h.store == nil {
		return storage.ErrDisabled
	}
	entries, err := h.store.RecentAudit(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []storage.AuditEntry{}
	}
	return c.JSON(fiber.Map{"success": true, "entries": entries})
}

func sent(c *fiber.Ctx, ref kit.MessageRef) error {
	return c.JSON(fiber.Map{"success": true, "messageId": ref.MessageID})
}

func (h *Handler) audit(c *fiber.Ctx, action, chatID, postID string, start time.Time, err error) {
	if h.store == nil {
		return
	}
	e := storage.AuditEntry{
		At:     start,
		Source: storage.SourceAPI,
		Action: action,
		ChatID: chatID,
		PostID: postID,
		OK:     err == nil,
		TookMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), 2*time.Second)
	defer cancel()
	if aerr := h.store.AppendAudit(ctx, e); aerr != nil {
		h.log.Warn("audit append failed", logx.String("action", action), logx.Err(aerr))
	}
}
