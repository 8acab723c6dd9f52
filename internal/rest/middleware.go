package rest

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"

	"postbot/internal/bot"
	"postbot/internal/storage"
	logx "postbot/pkg/logx"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, bot.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, bot.ErrInitialization):
		return fiber.StatusUnauthorized
	case errors.Is(err, bot.ErrPostNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, bot.ErrNotInitialized),
		errors.Is(err, bot.ErrAlreadyActive),
		errors.Is(err, bot.ErrDuplicatePost):
		return fiber.StatusConflict
	case errors.Is(err, bot.ErrDelivery):
		return fiber.StatusBadGateway
	case errors.Is(err, storage.ErrDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every returned error (and recovered panic) as a failure envelope.
func errorHandler(log logx.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", logx.String("method", c.Method()), logx.String("path", c.Path()), logx.Int("status", code), logx.Err(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
}

func stackTraceLogger(log logx.Logger) func(c *fiber.Ctx, e any) {
	return func(c *fiber.Ctx, e any) {
		log.Error("panic recovered",
			logx.String("path", c.Path()),
			logx.String("panic", fmt.Sprint(e)),
			logx.String("stack", string(debug.Stack())),
		)
	}
}

func requestLogger(log logx.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		log.Debug("http request",
			logx.String("method", c.Method()),
			logx.String("path", c.Path()),
			logx.Int("status", status),
			logx.Duration("took", time.Since(start)),
		)
		return err
	}
}
