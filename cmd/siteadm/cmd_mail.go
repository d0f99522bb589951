// AngelaMos | 2026
// cmd_mail.go

package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/shyam-international/exportsite/internal/contact"
	"github.com/shyam-international/exportsite/internal/mail"
)

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send the admin and customer test emails and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		sender, err := mail.NewSender(cfg.Mail, logger)
		if err != nil {
			return err
		}

		svc := contact.NewService(contact.ServiceConfig{
			Notifier: contact.NewNotifier(
				sender,
				mail.NewComposer(cfg.App.Company),
				cfg.Mail.Recipients(),
				logger,
			),
			SenderAddress: cfg.Mail.Sender(),
			Logger:        logger,
		})

		report := svc.SendTest(cmd.Context())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		if !report.Success() {
			return errors.New("no test email was delivered")
		}
		return nil
	},
}
