package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
)

// Service sends report emails over SMTP. TLS is attempted first with a
// STARTTLS fallback, which covers Gmail and most corporate relays.
type Service struct {
	config *common.SMTPConfig
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.Mailer = (*Service)(nil)

// NewService creates a new mailer service
func NewService(config *common.SMTPConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// IsConfigured reports whether enough SMTP settings are present to send mail
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" &&
		s.config.Username != "" &&
		s.config.Password != "" &&
		s.config.From != ""
}

// SendHTMLEmail sends an email with HTML and/or plain text body
func (s *Service) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return s.SendEmailWithAttachments(ctx, to, subject, htmlBody, textBody, nil)
}

// SendEmailWithAttachments sends an email with HTML/text body and file
// attachments.
func (s *Service) SendEmailWithAttachments(ctx context.Context, to, subject, htmlBody, textBody string, attachments []interfaces.MailAttachment) error {
	if !s.IsConfigured() {
		return fmt.Errorf("SMTP is not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	msg := buildMessage(s.config.FromName, s.config.From, to, subject, htmlBody, textBody, attachments)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var err error
	if s.config.UseTLS {
		err = s.sendWithTLS(addr, auth, s.config.From, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("to", to).
			Str("subject", subject).
			Msg("Failed to send email")
		return err
	}

	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("attachments", len(attachments)).
		Msg("Email sent")

	return nil
}

// buildMessage assembles the full RFC 5322 message. HTML and text bodies go
// into a multipart/alternative part; attachments wrap everything in
// multipart/mixed. Bodies are base64 encoded so long rendered lines cannot
// break the 998-character line limit.
func buildMessage(fromName, from, to, subject, htmlBody, textBody string, attachments []interfaces.MailAttachment) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	writeAlternative := func(boundary string) {
		if textBody != "" {
			msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
			msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
			msg.WriteString("Content-Transfer-Encoding: base64\r\n")
			msg.WriteString("\r\n")
			msg.WriteString(encodeBase64WithLineBreaks(textBody))
			msg.WriteString("\r\n")
		}
		if htmlBody != "" {
			msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
			msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
			msg.WriteString("Content-Transfer-Encoding: base64\r\n")
			msg.WriteString("\r\n")
			msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
			msg.WriteString("\r\n")
		}
		msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	}

	if len(attachments) == 0 {
		boundary := generateBoundary()
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
		msg.WriteString("\r\n")
		writeAlternative(boundary)
		return msg.String()
	}

	mixedBoundary := generateBoundary()
	altBoundary := generateBoundary()

	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", altBoundary))
	msg.WriteString("\r\n")
	writeAlternative(altBoundary)

	for _, att := range attachments {
		msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		msg.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, att.Filename))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename))
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(string(att.Content)))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))
	return msg.String()
}

// sendWithTLS sends email over a direct TLS connection, falling back to
// STARTTLS when the server does not accept implicit TLS.
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return s.sendWithSTARTTLS(addr, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return transmit(client, auth, from, to, msg)
}

// sendWithSTARTTLS sends email using a STARTTLS upgrade
func (s *Service) sendWithSTARTTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return transmit(client, auth, from, to, msg)
}

func transmit(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// generateBoundary creates a unique MIME boundary string. crypto/rand keeps
// boundaries from colliding with message content.
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "vigilo_boundary_fallback"
	}
	return fmt.Sprintf("vigilo_%x", b)
}

// encodeBase64WithLineBreaks encodes content as base64 with 76-char line
// breaks per RFC 2045.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var result strings.Builder
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}

	return result.String()
}
