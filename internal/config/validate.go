package config

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var storageDrivers = []any{"none", "file", "sqlite"}

// Validate checks values that would otherwise fail late (at listen, dial or open time).
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	return validation.Errors{
		"http":      validateHTTP(&cfg.HTTP),
		"telegram":  validateTelegram(&cfg.Telegram),
		"logging":   validateLogging(&cfg.Logging),
		"scheduler": validateScheduler(&cfg.Scheduler),
		"storage":   validateStorage(&cfg.Storage),
	}.Filter()
}

func validateHTTP(c *HTTPConfig) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required.When(c.Port == 0)),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.By(durationRule("http.read_timeout"))),
		validation.Field(&c.WriteTimeout, validation.By(durationRule("http.write_timeout"))),
	)
}

func validateTelegram(c *TelegramConfig) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required.When(c.AutoInit).Error("is required when auto_init is enabled")),
		validation.Field(&c.PollTimeout, validation.By(durationRule("telegram.poll_timeout"))),
		validation.Field(&c.RatePerSec, validation.Min(0)),
	)
}

func validateLogging(c *LoggingConfig) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "off")),
	)
}

func validateScheduler(c *SchedulerConfig) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
	)
}

func validateStorage(c *StorageConfig) error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = "none"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(storageDrivers...)),
		validation.Field(&c.BusyTimeout, validation.By(durationRule("storage.busy_timeout"))),
	)
}

func durationRule(path string) validation.RuleFunc {
	return func(v any) error {
		s, _ := v.(string)
		_, err := ParseDurationField(path, s)
		return err
	}
}
