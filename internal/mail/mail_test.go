// AngelaMos | 2026
// mail_test.go

package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-international/exportsite/internal/config"
)

func sampleContact() Contact {
	return Contact{
		Name:        "Priya <script>",
		Email:       "priya@example.com",
		Phone:       "+919876543210",
		Message:     "Need a quote for 20 tonnes of basmati rice.",
		IPAddress:   "203.0.113.4",
		SubmittedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAdminNotification(t *testing.T) {
	c := NewComposer("Shyam International")

	msg, err := c.AdminNotification("ops@example.com", sampleContact())
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", msg.To)
	assert.Equal(t, "New Contact: Priya <script>", msg.Subject)
	assert.Equal(t, "Website Contact", msg.FromName)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "Priya &lt;script&gt;")
	assert.Contains(t, msg.Text, "Company: Not provided")
	assert.Contains(t, msg.Text, "Shyam International Contact System")
}

func TestCustomerAcknowledgement(t *testing.T) {
	c := NewComposer("Shyam International")

	msg, err := c.CustomerAcknowledgement(sampleContact())
	require.NoError(t, err)

	assert.Equal(t, "priya@example.com", msg.To)
	assert.Equal(t, CustomerSubject, msg.Subject)
	assert.Equal(t, "Shyam International", msg.FromName)
	assert.True(t, strings.HasPrefix(msg.Text, "Dear Priya <script>,"))
}

func TestSMTPRawMessage(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "site@example.com",
	})

	raw := string(s.buildRaw(&Message{
		FromName: "Website Contact",
		To:       "ops@example.com",
		Subject:  "New Contact: Ravi",
		HTML:     "<p>hi</p>",
		Text:     "hi",
	}))

	assert.Contains(t, raw, "From: \"Website Contact\" <site@example.com>\r\n")
	assert.Contains(t, raw, "To: ops@example.com\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "<p>hi</p>")
}

func TestValidateRejectsHeaderInjection(t *testing.T) {
	s := NewLogSender(nil)

	err := s.Send(context.Background(), &Message{To: "a@example.com\r\nBcc: x@example.com"})
	assert.Error(t, err)

	assert.ErrorIs(t, s.Send(context.Background(), &Message{}), ErrNoRecipient)
	assert.NoError(t, s.Send(context.Background(), &Message{To: "a@example.com"}))
}

func TestNewSenderDrivers(t *testing.T) {
	s, err := NewSender(config.MailConfig{Driver: config.MailDriverLog}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(config.MailConfig{Driver: config.MailDriverResend, ResendAPIKey: "re_x"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = NewSender(config.MailConfig{Driver: "pigeon"}, nil)
	assert.Error(t, err)
}
