package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional mail through Resend. In
// development the mail is logged instead, link included, so the
// magic-link flow works without an API key.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

// deliver is the shared tail of every Send method. link may be empty;
// when set it is logged in dev mode so the flow can be completed from
// the server log.
func (s *EmailService) deliver(kind, to, subject, body, link string) error {
	if s.isDev {
		args := []any{"type", kind, "to", to, "subject", subject}
		if link != "" {
			args = append(args, "url", link)
		}
		slog.Info("email logged (dev mode)", args...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}

// SendMagicLinkEmail links straight to the verify endpoint; redeeming
// it in any client starts a session there.
func (s *EmailService) SendMagicLinkEmail(email, token, name string) error {
	magicURL := fmt.Sprintf("%s/api/auth/magic-link/%s", s.appURL, token)
	subject, body := magicLinkEmailTemplate(name, magicURL, s.appName)
	return s.deliver("magic_link", email, subject, body, magicURL)
}

func (s *EmailService) SendForgotPasswordEmail(email, token, name string) error {
	resetURL := fmt.Sprintf("%s/api/auth/forgot-password/%s", s.appURL, token)
	subject, body := forgotPasswordEmailTemplate(name, resetURL, s.appName)
	return s.deliver("forgot_password", email, subject, body, resetURL)
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	subject, body := welcomeEmailTemplate(name, s.appURL, s.appName)
	return s.deliver("welcome", email, subject, body, "")
}

func (s *EmailService) SendWeeklyDigestEmail(email, name string, digest *WeeklyDigest) error {
	subject, body := weeklyDigestEmailTemplate(name, digest, s.appURL, s.appName)
	return s.deliver("weekly_digest", email, subject, body, "")
}

func (s *EmailService) SendDeadlineReminderEmail(email, name string, due []DeadlineSummary) error {
	subject, body := deadlineReminderEmailTemplate(name, due, s.appName)
	return s.deliver("deadline_reminder", email, subject, body, "")
}

func (s *EmailService) SendAccountDeletedEmail(email, name string) error {
	subject, body := accountDeletedEmailTemplate(name, s.appName)
	return s.deliver("account_deleted", email, subject, body, "")
}
