// AngelaMos | 2026
// notifier.go

package contact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/mail"
	"github.com/shyam-international/exportsite/internal/metrics"
)

// Report is the outcome of one notification fan-out.
type Report struct {
	AdminSent    int      `json:"adminEmailsSent"`
	AdminFailed  int      `json:"adminEmailsFailed"`
	CustomerSent bool     `json:"customerEmailSent"`
	Attempted    int      `json:"totalEmailsAttempted"`
	Successful   int      `json:"totalEmailsSuccessful"`
	Errors       []string `json:"errors,omitempty"`
}

// Success reports whether at least one email went out.
func (r *Report) Success() bool {
	return r.Successful > 0
}

func (r *Report) metadata() EmailMetadata {
	return EmailMetadata{
		AdminEmailsSent:       r.AdminSent,
		AdminEmailsFailed:     r.AdminFailed,
		CustomerEmailSent:     r.CustomerSent,
		TotalEmailsAttempted:  r.Attempted,
		TotalEmailsSuccessful: r.Successful,
	}
}

type Notifier struct {
	sender     mail.Sender
	composer   *mail.Composer
	recipients []string
	logger     *slog.Logger
}

func NewNotifier(
	sender mail.Sender,
	composer *mail.Composer,
	recipients []string,
	logger *slog.Logger,
) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender:     sender,
		composer:   composer,
		recipients: recipients,
		logger:     logger,
	}
}

func (n *Notifier) Recipients() []string {
	return n.recipients
}

// Dispatch sends one notification per admin recipient and one
// acknowledgement to the submitter, all concurrently. Individual failures
// are collected into the report; Dispatch itself never fails.
func (n *Notifier) Dispatch(ctx context.Context, c mail.Contact) *Report {
	ctx, span := core.StartSpan(ctx, "contact.dispatch",
		attribute.Int("mail.admin_recipients", len(n.recipients)))
	defer span.End()

	var (
		mu       sync.Mutex
		report   = &Report{Attempted: len(n.recipients) + 1}
		adminErr = make([]string, len(n.recipients))
	)

	g, gctx := errgroup.WithContext(ctx)

	for i, addr := range n.recipients {
		g.Go(func() error {
			err := n.sendAdmin(gctx, addr, c)
			metrics.EmailDeliveries.WithLabelValues("admin", metrics.Outcome(err)).Inc()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.AdminFailed++
				adminErr[i] = fmt.Sprintf("%s: %v", addr, err)
				return nil
			}
			report.AdminSent++
			return nil
		})
	}

	var customerErr error
	g.Go(func() error {
		customerErr = n.sendCustomer(gctx, c)
		metrics.EmailDeliveries.WithLabelValues("customer", metrics.Outcome(customerErr)).Inc()
		return nil
	})

	//nolint:errcheck // goroutines record failures instead of returning them
	_ = g.Wait()

	for _, e := range adminErr {
		if e != "" {
			report.Errors = append(report.Errors, e)
		}
	}
	if customerErr != nil {
		report.Errors = append(report.Errors, "Customer email failed: "+customerErr.Error())
	} else {
		report.CustomerSent = true
	}

	report.Successful = report.AdminSent
	if report.CustomerSent {
		report.Successful++
	}
	span.SetAttributes(attribute.Int("mail.successful", report.Successful))

	n.logger.InfoContext(ctx, "contact notifications dispatched",
		"admin_sent", report.AdminSent,
		"admin_failed", report.AdminFailed,
		"customer_sent", report.CustomerSent,
	)

	return report
}

func (n *Notifier) sendAdmin(ctx context.Context, to string, c mail.Contact) error {
	msg, err := n.composer.AdminNotification(to, c)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}

func (n *Notifier) sendCustomer(ctx context.Context, c mail.Contact) error {
	msg, err := n.composer.CustomerAcknowledgement(c)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}
