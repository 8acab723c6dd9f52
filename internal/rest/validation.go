package rest

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"postbot/internal/bot"
	kit "postbot/internal/transport"
)

var hhmmPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

type initRequest struct {
	Token string `json:"token"`
}

type sendMessageRequest struct {
	ChatID  kit.ChatID       `json:"chatId"`
	Text    string           `json:"text"`
	Options *kit.SendOptions `json:"options,omitempty"`
}

type sendPhotoRequest struct {
	ChatID  kit.ChatID       `json:"chatId"`
	Photo   string           `json:"photo"`
	Options *kit.SendOptions `json:"options,omitempty"`
}

type sendVideoRequest struct {
	ChatID  kit.ChatID       `json:"chatId"`
	Video   string           `json:"video"`
	Options *kit.SendOptions `json:"options,omitempty"`
}

type schedulePostRequest struct {
	ID        string     `json:"id"`
	ChatID    kit.ChatID `json:"chatId"`
	Content   string     `json:"content"`
	MediaType string     `json:"mediaType"`
	MediaURL  string     `json:"mediaUrl"`
	Time      string     `json:"time"`
}

func (r schedulePostRequest) spec() bot.PostSpec {
	return bot.PostSpec{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Content:   r.Content,
		MediaKind: kit.MediaKind(r.MediaType),
		MediaURL:  r.MediaURL,
		Time:      r.Time,
	}
}

var chatIDRule = validation.By(func(v any) error {
	id, _ := v.(kit.ChatID)
	if id == "" || id.Valid() {
		return nil
	}
	return errors.New("must be a numeric chat id or @username")
})

func validateInit(r initRequest) error {
	return badRequest(validation.Validate(r.Token, validation.Required.Error("Token is required")))
}

func validateSendMessage(r *sendMessageRequest) error {
	return badRequest(validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required, chatIDRule),
		validation.Field(&r.Text, validation.Required),
	))
}

func validateSendPhoto(r *sendPhotoRequest) error {
	return badRequest(validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required, chatIDRule),
		validation.Field(&r.Photo, validation.Required),
	))
}

func validateSendVideo(r *sendVideoRequest) error {
	return badRequest(validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required, chatIDRule),
		validation.Field(&r.Video, validation.Required),
	))
}

func validateSchedulePost(r *schedulePostRequest) error {
	hasMedia := r.MediaURL != "" && r.MediaType != "" && r.MediaType != string(kit.MediaNone)
	return badRequest(validation.ValidateStruct(r,
		validation.Field(&r.ChatID, validation.Required, chatIDRule),
		validation.Field(&r.Content, validation.Required.When(!hasMedia)),
		validation.Field(&r.MediaType, validation.In("", "none", "image", "photo", "video")),
		validation.Field(&r.MediaURL, validation.Length(0, 2048)),
		validation.Field(&r.Time, validation.Required, validation.Match(hhmmPattern).Error("must be HH:MM")),
	))
}

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
