package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"postbot/internal/bot"
	"postbot/internal/rest/mocks"
	"postbot/internal/storage"
	kit "postbot/internal/transport"
	logx "postbot/pkg/logx"
)

type HandlerTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	mockSvc  *mocks.MockBotService
	store    storage.Store
	server   *Server

	testTime time.Time
	testChat kit.ChatID
}

func (s *HandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSvc = mocks.NewMockBotService(s.mockCtrl)
	s.testTime = time.Date(2026, 5, 4, 3, 2, 1, 123_000_000, time.UTC)
	s.testChat = kit.ChatID("-1001234567890")

	st, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(s.T().TempDir(), "audit.jsonl")}, logx.Nop())
	s.Require().NoError(err)
	s.store = st

	s.server = New(s.mockSvc, Options{
		Logger: logx.Nop(),
		Store:  s.store,
		Now:    func() time.Time { return s.testTime },
	})
}

func (s *HandlerTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *HandlerTestSuite) do(method, path, body string) (int, map[string]any) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.server.App().Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := map[string]any{}
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *HandlerTestSuite) lastAudit() storage.AuditEntry {
	entries, err := s.store.RecentAudit(context.Background(), 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	return entries[0]
}

func (s *HandlerTestSuite) TestHealth() {
	code, body := s.do(http.MethodGet, "/api/health", "")
	s.Equal(http.StatusOK, code)
	s.Equal("OK", body["status"])
	s.Equal("2026-05-04T03:02:01.123Z", body["timestamp"])
}

func (s *HandlerTestSuite) TestInitSuccess() {
	s.mockSvc.EXPECT().Initialize(gomock.Any(), "123:abc").Return(nil)

	code, body := s.do(http.MethodPost, "/api/bot/init", `{"token":"123:abc"}`)
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal("Bot initialized successfully", body["message"])

	e := s.lastAudit()
	s.Equal("init", e.Action)
	s.True(e.OK)
}

func (s *HandlerTestSuite) TestInitMissingToken() {
	code, body := s.do(http.MethodPost, "/api/bot/init", `{}`)
	s.Equal(http.StatusBadRequest, code)
	s.Equal(false, body["success"])
	s.Equal("Token is required", body["message"])
}

func (s *HandlerTestSuite) TestInitErrorsMapToStatus() {
	tests := []struct {
		err  error
		code int
	}{
		{bot.ErrAlreadyActive, http.StatusConflict},
		{errors.Join(bot.ErrInitialization, errors.New("Unauthorized")), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.mockSvc.EXPECT().Initialize(gomock.Any(), "t").Return(tt.err)
		code, body := s.do(http.MethodPost, "/api/bot/init", `{"token":"t"}`)
		s.Equal(tt.code, code, tt.err.Error())
		s.Equal(false, body["success"])
		s.Equal(tt.err.Error(), body["message"])
	}
	s.False(s.lastAudit().OK)
}

func (s *HandlerTestSuite) TestSendMessage() {
	s.mockSvc.EXPECT().
		SendText(gomock.Any(), s.testChat, "hello", &kit.SendOptions{ParseMode: "HTML"}).
		Return(kit.MessageRef{ChatID: s.testChat, MessageID: 321}, nil)

	code, body := s.do(http.MethodPost, "/api/bot/send-message",
		`{"chatId":-1001234567890,"text":"hello","options":{"parse_mode":"HTML"}}`)
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal(float64(321), body["messageId"])

	e := s.lastAudit()
	s.Equal("send-message", e.Action)
	s.Equal(s.testChat.String(), e.ChatID)
}

func (s *HandlerTestSuite) TestSendMessageValidation() {
	for _, payload := range []string{
		`{"text":"hello"}`,
		`{"chatId":"not a chat","text":"hello"}`,
		`{"chatId":"@channel"}`,
		`{"chatId":1.5,"text":"x"}`,
	} {
		code, body := s.do(http.MethodPost, "/api/bot/send-message", payload)
		s.Equal(http.StatusBadRequest, code, payload)
		s.Equal(false, body["success"])
	}
}

func (s *HandlerTestSuite) TestSendErrorsMapToStatus() {
	s.mockSvc.EXPECT().SendText(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(kit.MessageRef{}, bot.ErrNotInitialized)
	code, _ := s.do(http.MethodPost, "/api/bot/send-message", `{"chatId":"@channel","text":"x"}`)
	s.Equal(http.StatusConflict, code)

	de := &bot.DeliveryError{Op: "sendPhoto", Chat: "@channel", Err: errors.New("Bad Request: wrong file")}
	s.mockSvc.EXPECT().SendPhoto(gomock.Any(), kit.ChatID("@channel"), "https://x/y.jpg", gomock.Nil()).Return(kit.MessageRef{}, de)
	code, body := s.do(http.MethodPost, "/api/bot/send-photo", `{"chatId":"@channel","photo":"https://x/y.jpg"}`)
	s.Equal(http.StatusBadGateway, code)
	s.Contains(body["message"], "wrong file")
}

func (s *HandlerTestSuite) TestSendVideo() {
	s.mockSvc.EXPECT().
		SendVideo(gomock.Any(), kit.ChatID("42"), "https://x/v.mp4", &kit.SendOptions{Caption: "clip"}).
		Return(kit.MessageRef{MessageID: 5}, nil)
	code, body := s.do(http.MethodPost, "/api/bot/send-video", `{"chatId":"42","video":"https://x/v.mp4","options":{"caption":"clip"}}`)
	s.Equal(http.StatusOK, code)
	s.Equal(float64(5), body["messageId"])
}

func (s *HandlerTestSuite) TestSchedulePost() {
	want := bot.PostSpec{ID: "", ChatID: s.testChat, Content: "gm", MediaKind: "image", MediaURL: "https://x/y.jpg", Time: "08:15"}
	s.mockSvc.EXPECT().SchedulePost(want).Return(bot.ScheduledPost{
		PostSpec: bot.PostSpec{ID: "gen-1", ChatID: s.testChat, Content: "gm", MediaKind: kit.MediaImage, MediaURL: "https://x/y.jpg", Time: "08:15"},
		NextRun:  time.Date(2026, 5, 4, 8, 15, 0, 0, time.UTC),
	}, nil)

	code, body := s.do(http.MethodPost, "/api/bot/schedule-post",
		`{"chatId":"-1001234567890","content":"gm","mediaType":"image","mediaUrl":"https://x/y.jpg","time":"08:15"}`)
	s.Equal(http.StatusOK, code)
	s.Equal("Post scheduled successfully", body["message"])
	s.Equal("gen-1", body["id"])
	post, ok := body["post"].(map[string]any)
	s.Require().True(ok)
	s.Equal("2026-05-04T08:15:00Z", post["nextRun"])

	e := s.lastAudit()
	s.Equal("schedule-post", e.Action)
	s.Equal("gen-1", e.PostID)
}

func (s *HandlerTestSuite) TestSchedulePostValidation() {
	for _, payload := range []string{
		`{"chatId":"1","content":"x"}`,
		`{"chatId":"1","content":"x","time":"8am"}`,
		`{"chatId":"1","time":"08:00"}`,
		`{"chatId":"1","content":"x","mediaType":"audio","time":"08:00"}`,
		`{"content":"x","time":"08:00"}`,
	} {
		code, _ := s.do(http.MethodPost, "/api/bot/schedule-post", payload)
		s.Equal(http.StatusBadRequest, code, payload)
	}
}

func (s *HandlerTestSuite) TestSchedulePostMediaWithoutContent() {
	s.mockSvc.EXPECT().SchedulePost(gomock.Any()).Return(bot.ScheduledPost{PostSpec: bot.PostSpec{ID: "v"}}, nil)
	code, _ := s.do(http.MethodPost, "/api/bot/schedule-post", `{"chatId":"1","mediaType":"video","mediaUrl":"https://x/v.mp4","time":"23:59"}`)
	s.Equal(http.StatusOK, code)
}

func (s *HandlerTestSuite) TestSchedulePostDuplicate() {
	s.mockSvc.EXPECT().SchedulePost(gomock.Any()).Return(bot.ScheduledPost{}, bot.ErrDuplicatePost)
	code, _ := s.do(http.MethodPost, "/api/bot/schedule-post", `{"id":"p1","chatId":"1","content":"x","time":"08:00"}`)
	s.Equal(http.StatusConflict, code)
}

func (s *HandlerTestSuite) TestListScheduledPosts() {
	s.mockSvc.EXPECT().ScheduledPosts().Return([]bot.ScheduledPost{
		{PostSpec: bot.PostSpec{ID: "a"}},
		{PostSpec: bot.PostSpec{ID: "b"}},
	})
	code, body := s.do(http.MethodGet, "/api/bot/schedule-posts", "")
	s.Equal(http.StatusOK, code)
	posts, ok := body["posts"].([]any)
	s.Require().True(ok)
	s.Len(posts, 2)
}

func (s *HandlerTestSuite) TestCancelScheduledPost() {
	s.mockSvc.EXPECT().CancelScheduledPost("p1").Return(nil)
	code, body := s.do(http.MethodDelete, "/api/bot/schedule-post/p1", "")
	s.Equal(http.StatusOK, code)
	s.Equal("Scheduled post cancelled", body["message"])

	s.mockSvc.EXPECT().CancelScheduledPost("p1").Return(bot.ErrPostNotFound)
	code, body = s.do(http.MethodDelete, "/api/bot/schedule-post/p1", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal(false, body["success"])
	s.Equal("Scheduled post not found", body["message"])
}

func (s *HandlerTestSuite) TestInfoAndChat() {
	s.mockSvc.EXPECT().BotInfo(gomock.Any()).Return(kit.BotInfo{ID: 7, IsBot: true, Username: "post_bot"}, nil)
	code, body := s.do(http.MethodGet, "/api/bot/info", "")
	s.Equal(http.StatusOK, code)
	info, ok := body["botInfo"].(map[string]any)
	s.Require().True(ok)
	s.Equal("post_bot", info["username"])

	s.mockSvc.EXPECT().ChatInfo(gomock.Any(), kit.ChatID("@news")).Return(kit.ChatInfo{ID: -100, Type: "channel", Title: "News"}, nil)
	code, body = s.do(http.MethodGet, "/api/bot/chat/@news", "")
	s.Equal(http.StatusOK, code)
	chat, ok := body["chatInfo"].(map[string]any)
	s.Require().True(ok)
	s.Equal("News", chat["title"])

	s.mockSvc.EXPECT().BotInfo(gomock.Any()).Return(kit.BotInfo{}, bot.ErrNotInitialized)
	code, _ = s.do(http.MethodGet, "/api/bot/info", "")
	s.Equal(http.StatusConflict, code)
}

func (s *HandlerTestSuite) TestStop() {
	s.mockSvc.EXPECT().Stop(gomock.Any()).Return(nil)
	code, body := s.do(http.MethodPost, "/api/bot/stop", "")
	s.Equal(http.StatusOK, code)
	s.Equal("Bot stopped successfully", body["message"])

	s.mockSvc.EXPECT().Stop(gomock.Any()).Return(bot.ErrNotInitialized)
	code, body = s.do(http.MethodPost, "/api/bot/stop", "")
	s.Equal(http.StatusConflict, code)
	s.Equal("Bot not running", body["message"])
}

func (s *HandlerTestSuite) TestStatus() {
	s.mockSvc.EXPECT().Status().Return(bot.Status{State: bot.StateActive, Scheduled: 3, Timezone: "UTC"})
	code, body := s.do(http.MethodGet, "/api/bot/status", "")
	s.Equal(http.StatusOK, code)
	st, ok := body["status"].(map[string]any)
	s.Require().True(ok)
	s.Equal("active", st["state"])
	s.Equal(float64(3), st["scheduled"])
}

func (s *HandlerTestSuite) TestAudit() {
	s.mockSvc.EXPECT().Stop(gomock.Any()).Return(nil)
	s.do(http.MethodPost, "/api/bot/stop", "")

	code, body := s.do(http.MethodGet, "/api/bot/audit?limit=5", "")
	s.Equal(http.StatusOK, code)
	entries, ok := body["entries"].([]any)
	s.Require().True(ok)
	s.Require().Len(entries, 1)
	s.Equal("stop", entries[0].(map[string]any)["action"])
}

func (s *HandlerTestSuite) TestUnknownRoute() {
	code, body := s.do(http.MethodGet, "/api/bot/nope", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal(false, body["success"])
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestAuditDisabled(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	srv := New(mocks.NewMockBotService(ctrl), Options{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/bot/audit", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestPanicBecomesEnvelope(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBotService(ctrl)
	svc.EXPECT().ScheduledPosts().DoAndReturn(func() []bot.ScheduledPost { panic("kaboom") })
	srv := New(svc, Options{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/bot/schedule-posts", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCORSOrigins(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"", "*"},
		{" * ", "*"},
		{"https://a.example, ,https://b.example", "https://a.example, https://b.example"},
		{"https://a.example,*", "*"},
	}
	for _, tt := range tests {
		if got := corsOrigins(tt.in); got != tt.want {
			t.Fatalf("corsOrigins(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
