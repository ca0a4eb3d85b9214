package interfaces

import "context"

// MailAttachment represents a file attached to an outgoing email
type MailAttachment struct {
	Filename    string // Filename for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	Content     []byte // Raw content bytes
}

// Mailer sends notification emails to configured recipients
type Mailer interface {
	// IsConfigured reports whether SMTP settings are complete enough to send
	IsConfigured() bool

	// SendHTMLEmail sends an email with HTML and/or plain text body
	SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error

	// SendEmailWithAttachments sends an email with body and file attachments
	SendEmailWithAttachments(ctx context.Context, to, subject, htmlBody, textBody string, attachments []MailAttachment) error
}
