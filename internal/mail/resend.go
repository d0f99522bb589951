// AngelaMos | 2026
// resend.go

package mail

import (
	"context"
	"fmt"

	"github.com/resendlabs/resend-go"
)

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send does not observe ctx cancellation mid-request; the client has no
// context-aware API.
func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    formatFrom(msg.FromName, s.from),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	return nil
}
