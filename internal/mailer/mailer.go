package mailer

import (
	"context"
	"log/slog"
)

// Sender is the outbound-email collaborator. Verification mail failures after
// the user row exists surface to the caller; the row is kept and the user can
// recover through resend.
type Sender interface {
	SendVerificationCode(ctx context.Context, to, firstName, lastName, code string, resend bool) error
	SendContactNotification(ctx context.Context, fullName, email, company, message string) error
}

// LogSender stands in when SMTP is not configured (local development, tests).
// It logs the would-be delivery instead of sending anything.
type LogSender struct{}

func (LogSender) SendVerificationCode(ctx context.Context, to, firstName, lastName, code string, resend bool) error {
	slog.InfoContext(ctx, "SMTP not configured, logging verification code instead",
		"to", to, "code", code, "resend", resend)
	return nil
}

func (LogSender) SendContactNotification(ctx context.Context, fullName, email, company, message string) error {
	slog.InfoContext(ctx, "SMTP not configured, dropping contact notification",
		"from", email, "full_name", fullName)
	return nil
}
