// Package alert notifies operators about service-affecting events, such as
// a language model circuit breaker tripping open.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/librimatch/librimatch/pkg/config"
)

// Alerter delivers an operator notification.
type Alerter interface {
	Alert(subject, message string) error
}

// EmailAlerter delivers alerts over SMTP to the recipients in the alert
// config section.
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter builds an alerter from the alert config section.
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert sends one email to all configured recipients. A disabled config
// makes it a no-op.
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "To: %s\r\n", strings.Join(a.cfg.To, ","))
	fmt.Fprintf(&body, "Subject: %s\r\n\r\n", subject)
	fmt.Fprintf(&body, "%s\r\n", message)

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, a.cfg.From, a.cfg.To, []byte(body.String())); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// NoOpAlerter discards alerts. It backs deployments with no alerting
// configured so the circuit breaker always has somewhere to report.
type NoOpAlerter struct{}

// Alert discards the notification.
func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
