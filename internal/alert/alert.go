// Package alert implements C12, the Alerter (§4.12): one composed message
// per run, sent via Telegram first and falling back to email when Telegram
// is disabled or its delivery fails. Grounded on the reference's
// internal/transparency/downloader (plain *http.Client, explicit
// CheckRedirect/User-Agent, status-code branching) and the original's
// src/monitor/alerting.py (Telegram-then-email fallback, severity prefix).
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/farxc/projetus/internal/config"
	"github.com/farxc/projetus/internal/logger"
)

// Severity mirrors the original's CRITICAL/WARNING/INFO prefixes (§4.12, §7).
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Message is one alert composed for delivery. Idempotent under the
// Orchestrator's retry policy: RunID lets a downstream channel dedupe if it
// chooses to, though neither channel built here does.
type Message struct {
	RunID    string
	Subject  string
	Body     string
	Severity Severity
}

// Alerter sends a Message over Telegram, falling back to email when
// Telegram is disabled, the request fails, or Telegram answers with a
// non-2xx status — matching the original's send_alert, whose
// send_telegram_alert wraps response.raise_for_status() in a try/except
// and reports failure (triggering the email fallback) for any non-2xx.
type Alerter struct {
	cfg    config.AlertingConfig
	log    *logger.Logger
	client *http.Client
}

func New(cfg config.AlertingConfig, log *logger.Logger) *Alerter {
	return &Alerter{cfg: cfg, log: log, client: &http.Client{Timeout: 30 * time.Second}}
}

// Send delivers msg, trying Telegram then email, and reports which (if any)
// channel accepted it. A false return means both channels failed or neither
// was configured — the caller (Orchestrator, health checks) logs this but
// never fails the run over it (§4.12: alerting failures are never fatal).
func (a *Alerter) Send(msg Message) bool {
	const component = "Alerter"
	text := fmt.Sprintf("%s %s\n\n%s", severityPrefix(msg.Severity), msg.Subject, msg.Body)

	if a.cfg.Telegram.Enabled {
		if err := a.sendTelegram(text); err != nil {
			a.log.Warn(component, "telegram delivery failed, falling back to email: run_id=%s error=%v", msg.RunID, err)
		} else {
			a.log.Info(component, "alert sent via telegram: run_id=%s subject=%s", msg.RunID, msg.Subject)
			return true
		}
	}

	if a.cfg.Email.Enabled {
		if err := a.sendEmail(msg.Subject, text); err != nil {
			a.log.Error(component, "email delivery failed: run_id=%s error=%v", msg.RunID, err)
		} else {
			a.log.Info(component, "alert sent via email: run_id=%s subject=%s", msg.RunID, msg.Subject)
			return true
		}
	}

	a.log.Error(component, "failed to send alert via any channel: run_id=%s subject=%s", msg.RunID, msg.Subject)
	return false
}

func severityPrefix(s Severity) string {
	if s == "" {
		return "[INFO]"
	}
	return "[" + string(s) + "]"
}

type telegramPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (a *Alerter) sendTelegram(text string) error {
	if a.cfg.Telegram.BotToken == "" || a.cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram: missing bot token or chat id")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", a.cfg.Telegram.BotToken)
	body, err := json.Marshal(telegramPayload{ChatID: a.cfg.Telegram.ChatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: non-2xx response status=%d", resp.StatusCode)
	}
	return nil
}

// sendEmail uses net/smtp directly — none of the example repos import a
// third-party mail client. smtp.SendMail upgrades to STARTTLS when the
// server offers it; no SMTP authentication is performed (auth is nil).
func (a *Alerter) sendEmail(subject, body string) error {
	cfg := a.cfg.Email
	if cfg.SMTPHost == "" || len(cfg.To) == 0 {
		return fmt.Errorf("email: missing smtp host or recipients")
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	msg := fmt.Sprintf("Subject: %s\r\nFrom: %s\r\nTo: %s\r\n\r\n%s",
		subject, cfg.From, strings.Join(cfg.To, ", "), body)

	var auth smtp.Auth
	return smtp.SendMail(addr, auth, cfg.From, cfg.To, []byte(msg))
}
