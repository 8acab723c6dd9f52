package config

import (
	"sort"
	"strings"

	logx "postbot/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections and safe
// structured attrs for logging (never includes secrets like tokens).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 16)

	if oldCfg.HTTP != newCfg.HTTP {
		changed = append(changed, "http")
		attrs = append(attrs,
			logx.String("http.addr", newCfg.HTTP.ListenAddr()),
			logx.String("http.cors_origins", newCfg.HTTP.CORSOrigins),
		)
	}

	// Telegram (never log token)
	oldT, newT := oldCfg.Telegram, newCfg.Telegram
	oldTokenSet := strings.TrimSpace(oldT.Token) != ""
	newTokenSet := strings.TrimSpace(newT.Token) != ""
	if oldTokenSet != newTokenSet || (oldTokenSet && oldT.Token != newT.Token) ||
		strings.TrimSpace(oldT.PollTimeout) != strings.TrimSpace(newT.PollTimeout) ||
		oldT.RatePerSec != newT.RatePerSec ||
		oldT.AutoInit != newT.AutoInit {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_set", newTokenSet),
			logx.String("telegram.poll_timeout", strings.TrimSpace(newT.PollTimeout)),
			logx.Int("telegram.rate_per_sec", newT.RatePerSec),
			logx.Bool("telegram.auto_init", newT.AutoInit),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if strings.TrimSpace(oldCfg.Scheduler.Timezone) != strings.TrimSpace(newCfg.Scheduler.Timezone) {
		changed = append(changed, "scheduler")
		attrs = append(attrs, logx.String("scheduler.timezone", strings.TrimSpace(newCfg.Scheduler.Timezone)))
	}

	oldS, newS := oldCfg.Storage, newCfg.Storage
	if strings.TrimSpace(oldS.Driver) != strings.TrimSpace(newS.Driver) ||
		strings.TrimSpace(oldS.Path) != strings.TrimSpace(newS.Path) ||
		strings.TrimSpace(oldS.BusyTimeout) != strings.TrimSpace(newS.BusyTimeout) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(newS.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(newS.Path) != ""),
			logx.String("storage.busy_timeout", strings.TrimSpace(newS.BusyTimeout)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
