package alert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librimatch/librimatch/pkg/alert"
	"github.com/librimatch/librimatch/pkg/config"
)

func TestEmailAlerterDisabledIsNoOp(t *testing.T) {
	// Disabled config must short-circuit before any SMTP dialing; the
	// bogus host would otherwise fail the send.
	alerter := alert.NewEmailAlerter(config.AlertConfig{
		Enabled:  false,
		SMTPHost: "smtp.invalid",
		SMTPPort: 25,
	})

	assert.NoError(t, alerter.Alert("breaker open", "gemini-flash-lite backend tripped"))
}

func TestNoOpAlerter(t *testing.T) {
	alerter := &alert.NoOpAlerter{}
	assert.NoError(t, alerter.Alert("anything", "anything"))
}
