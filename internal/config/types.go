package config

import (
	"strconv"
	"strings"
	"time"
)

// Config is the whole service configuration. File values are loaded first, then
// environment variables (see the env tags) override them.
type Config struct {
	HTTP      HTTPConfig      `json:"http"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Storage   StorageConfig   `json:"storage"`
}

// HTTPConfig controls the REST control surface.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type HTTPConfig struct {
	Addr string `env:"POSTBOT_HTTP_ADDR" json:"addr"`
	// Port mirrors the conventional PORT variable; when set it wins over Addr's port.
	Port         int    `env:"PORT"                        json:"port,omitempty"`
	ReadTimeout  string `env:"POSTBOT_HTTP_READ_TIMEOUT"   json:"read_timeout,omitempty"`
	WriteTimeout string `env:"POSTBOT_HTTP_WRITE_TIMEOUT"  json:"write_timeout,omitempty"`
	// CORSOrigins is a comma-separated allowlist; "*" allows any origin.
	CORSOrigins string `env:"POSTBOT_HTTP_CORS_ORIGINS" json:"cors_origins,omitempty"`
}

// ListenAddr resolves Addr and Port into the address to bind.
func (c HTTPConfig) ListenAddr() string {
	addr := strings.TrimSpace(c.Addr)
	if c.Port > 0 {
		host := ""
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		return host + ":" + strconv.Itoa(c.Port)
	}
	if addr == "" {
		return DefaultHTTPAddr
	}
	return addr
}

type TelegramConfig struct {
	// Token is optional. With AutoInit the session starts at boot; otherwise it is
	// supplied through POST /api/bot/init. Never logged.
	Token string `env:"BOT_TOKEN" json:"token,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `env:"POSTBOT_TELEGRAM_POLL_TIMEOUT" json:"poll_timeout,omitempty"`
	RatePerSec  int    `env:"POSTBOT_TELEGRAM_RATE_PER_SEC" json:"rate_per_sec,omitempty"`
	AutoInit    bool   `env:"POSTBOT_TELEGRAM_AUTO_INIT"    json:"auto_init,omitempty"`
}

type LoggingConfig struct {
	Level   string      `env:"POSTBOT_LOG_LEVEL"   json:"level"`
	Console bool        `env:"POSTBOT_LOG_CONSOLE" json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `env:"POSTBOT_LOG_FILE_ENABLED" json:"enabled"`
	Path    string `env:"POSTBOT_LOG_FILE_PATH"    json:"path"`
}

// SchedulerConfig controls how post times are read. Post times are wall-clock
// "HH:MM" in Timezone. Changes apply to the next bot session.
type SchedulerConfig struct {
	Timezone string `env:"POSTBOT_SCHEDULER_TIMEZONE" json:"timezone,omitempty"`
}

// Location resolves Timezone, defaulting to UTC.
func (c SchedulerConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "utc") {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

// StorageConfig controls the optional operation audit trail.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./postbot_data/audit.db" }
type StorageConfig struct {
	Driver      string `env:"POSTBOT_STORAGE_DRIVER"       json:"driver"`
	Path        string `env:"POSTBOT_STORAGE_PATH"         json:"path,omitempty"`
	BusyTimeout string `env:"POSTBOT_STORAGE_BUSY_TIMEOUT" json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

const (
	DefaultHTTPAddr     = ":3000"
	DefaultPollTimeout  = "10s"
	DefaultRatePerSec   = 25
	DefaultStorageDir   = "./postbot_data"
	DefaultReadTimeout  = "15s"
	DefaultWriteTimeout = "30s"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         DefaultHTTPAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			CORSOrigins:  "*",
		},
		Telegram: TelegramConfig{
			PollTimeout: DefaultPollTimeout,
			RatePerSec:  DefaultRatePerSec,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Scheduler: SchedulerConfig{Timezone: "UTC"},
		Storage:   StorageConfig{Driver: "none"},
	}
}
