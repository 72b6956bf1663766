package alert

import (
	"testing"

	"github.com/farxc/projetus/internal/config"
	"github.com/farxc/projetus/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{MinLevel: logger.LevelError}
}

func TestSendReturnsFalseWhenNoChannelConfigured(t *testing.T) {
	a := New(config.AlertingConfig{}, newTestLogger())
	sent := a.Send(Message{RunID: "r1", Subject: "test", Body: "body", Severity: SeverityInfo})
	assert.False(t, sent)
}

func TestSeverityPrefixDefaultsToInfo(t *testing.T) {
	assert.Equal(t, "[INFO]", severityPrefix(""))
	assert.Equal(t, "[CRITICAL]", severityPrefix(SeverityCritical))
	assert.Equal(t, "[WARNING]", severityPrefix(SeverityWarning))
}

func TestSendTelegramFailsFastWithoutCredentials(t *testing.T) {
	a := New(config.AlertingConfig{Telegram: config.TelegramConfig{Enabled: true}}, newTestLogger())
	err := a.sendTelegram("hello")
	assert.Error(t, err)
}

func TestSendEmailFailsFastWithoutRecipients(t *testing.T) {
	a := New(config.AlertingConfig{Email: config.EmailConfig{Enabled: true, SMTPHost: "smtp.example.com"}}, newTestLogger())
	err := a.sendEmail("subject", "body")
	assert.Error(t, err)
}
