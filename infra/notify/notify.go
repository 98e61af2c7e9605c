// Package notify provides notification sink implementations for the alert
// dispatcher. Sinks swallow their own delivery failures; a broken channel
// must never surface into the engine.
package notify

import (
	"github.com/gridpool/autobid/core/alert"
	"github.com/gridpool/autobid/core/logger"
)

// Config selects the enabled notification channels.
type Config struct {
	// LogEnabled mirrors notifications to the structured log.
	LogEnabled bool `json:"log_enabled"`
	// WebhookURL is the default endpoint for webhook delivery. Alerts may
	// override it with their own URL.
	WebhookURL string `json:"webhook_url"`
	// WebhookTimeoutSeconds bounds each delivery attempt.
	WebhookTimeoutSeconds int `json:"webhook_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.WebhookTimeoutSeconds <= 0 {
		c.WebhookTimeoutSeconds = 5
	}
}

// Build assembles the configured sink stack. With nothing enabled the log
// sink is used so notifications are never silently dropped.
func Build(cfg Config, log logger.Logger) alert.Notifier {
	var sinks []alert.Notifier
	if cfg.LogEnabled {
		sinks = append(sinks, NewLogSink(log))
	}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, NewWebhookSink(cfg, log))
	}
	switch len(sinks) {
	case 0:
		return NewLogSink(log)
	case 1:
		return sinks[0]
	default:
		return NewMultiSink(sinks...)
	}
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop{}
	}
	return &LogSink{log: log}
}

func (s *LogSink) Notify(title, body string) {
	s.log.Infof("%s: %s", title, body)
}

// MultiSink fans a notification out to several sinks.
type MultiSink struct {
	sinks []alert.Notifier
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...alert.Notifier) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Notify(title, body string) {
	for _, s := range m.sinks {
		s.Notify(title, body)
	}
}

// NotifyTo forwards per-alert webhook delivery to any capable sink.
func (m *MultiSink) NotifyTo(url, title, body string) {
	for _, s := range m.sinks {
		if wn, ok := s.(alert.WebhookNotifier); ok {
			wn.NotifyTo(url, title, body)
		}
	}
}
