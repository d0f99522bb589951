// AngelaMos | 2026
// mail.go

package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shyam-international/exportsite/internal/config"
)

var ErrNoRecipient = errors.New("mail: no recipient")

type Message struct {
	FromName string
	To       string
	Subject  string
	HTML     string
	Text     string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

func NewSender(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Driver {
	case config.MailDriverSMTP:
		return NewSMTPSender(cfg), nil
	case config.MailDriverResend:
		return NewResendSender(cfg.ResendAPIKey, cfg.Sender()), nil
	case config.MailDriverLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func formatFrom(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%q <%s>", name, addr)
}

func validate(msg *Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if strings.ContainsAny(msg.To+msg.Subject+msg.FromName, "\r\n") {
		return fmt.Errorf("mail: header injection rejected")
	}
	return nil
}

type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that only logs. Used in development and
// when no mail transport is configured.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mail (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"text_bytes", len(msg.Text),
	)
	return nil
}
