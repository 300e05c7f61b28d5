package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/config"
)

var ErrSMTPNotConfigured = errors.New("SMTP not configured")

// Mail is one outbound message
type Mail struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// Mailer delivers outbound mail
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// EmailService handles sending emails via SMTP with STARTTLS
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      zerolog.Logger
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnvironmentVariable, logger zerolog.Logger) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     env.SMTP_FROM,
		log:      logger.With().Str("component", "email").Logger(),
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.host != "" && e.username != "" && e.password != ""
}

// Send delivers mail over SMTP. The context bounds the dial only; net/smtp
// has no per-command deadlines so the connection gets one instead.
func (e *EmailService) Send(ctx context.Context, mail Mail) error {
	if !e.IsConfigured() {
		e.log.Warn().Str("to", mail.To).Str("subject", mail.Subject).Msg("SMTP not configured, dropping mail")
		return ErrSMTPNotConfigured
	}

	addr := net.JoinHostPort(e.host, fmt.Sprint(e.port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	deadline := time.Now().Add(30 * time.Second)
	if dl, ok := ctx.Deadline(); ok {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, e.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", e.username, e.password, e.host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(mail.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(e.compose(mail)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	e.log.Info().Str("to", mail.To).Str("subject", mail.Subject).Msg("email sent")
	return client.Quit()
}

// compose renders headers and body in wire order
func (e *EmailService) compose(mail Mail) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("ExamAce Vault <%s>", e.from)},
		{"To", mail.To},
		{"Subject", headerSafe(mail.Subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"X-Mailer", "ExamAce Vault Mailer"},
	}
	if mail.ReplyTo != "" {
		headers = append(headers, [2]string{"Reply-To", headerSafe(mail.ReplyTo)})
	}

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(mail.HTMLBody)
	return []byte(b.String())
}

// headerSafe strips CR/LF so user input cannot inject headers
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// ContactMailBody renders a contact form submission for the inbox
func ContactMailBody(name, email, subject, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>New contact form message</h2>
  <p><strong>From:</strong> %s &lt;%s&gt;</p>
  <p><strong>Subject:</strong> %s</p>
  <div style="white-space: pre-wrap; border-left: 3px solid #6366f1; padding-left: 12px;">%s</div>
</body>
</html>`,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(subject),
		html.EscapeString(message),
	)
}
