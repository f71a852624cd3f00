package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	AppName      string
	ContactInbox string
	CodeExpMins  int
}

type SMTPSender struct {
	config *SMTPConfig
}

func NewSMTPSender(config *SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

// send handles the SMTP handshake and delivery. Headers follow RFC 822; note
// the CRLF line endings and the blank line separating headers from body.
func (m *SMTPSender) send(toEmail, subject, body string) error {
	smtpAddr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	headers := []string{
		fmt.Sprintf("From: %s", m.config.User),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}

	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)

	return smtp.SendMail(smtpAddr, auth, m.config.User, []string{toEmail}, []byte(message))
}

func (m *SMTPSender) SendVerificationCode(ctx context.Context, to, firstName, lastName, code string, resend bool) error {
	subject := fmt.Sprintf("Verify Your %s Account - Action Required", m.config.AppName)
	intro := fmt.Sprintf("Thank you for joining %s! To complete your registration, please verify your email address using the verification code below:", m.config.AppName)

	if resend {
		subject = fmt.Sprintf("Your %s Verification Code - Resend Request", m.config.AppName)
		intro = "You requested to resend your verification code. Please use the verification code below to verify your email address:"
	}

	body := fmt.Sprintf(
		"Hello %s %s,\n\n"+
			"%s\n\n"+
			"Verification Code: %s\n\n"+
			"This code will expire in %d minutes.\n\n"+
			"Best regards,\nThe %s Team",
		firstName, lastName, intro, code, m.config.CodeExpMins, m.config.AppName)

	return m.send(to, subject, body)
}

func (m *SMTPSender) SendContactNotification(ctx context.Context, fullName, email, company, message string) error {
	if company == "" {
		company = "N/A"
	}

	body := fmt.Sprintf(
		"You have received a new contact form submission:\n\n"+
			"Full Name: %s\n"+
			"Email: %s\n"+
			"Company: %s\n"+
			"Message: %s\n",
		fullName, email, company, message)

	return m.send(m.config.ContactInbox, "New Contact Form Submission", body)
}
