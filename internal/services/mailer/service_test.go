package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
)

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   common.SMTPConfig
		expected bool
	}{
		{
			name: "fully configured",
			config: common.SMTPConfig{
				Host: "smtp.gmail.com", Username: "bot", Password: "secret", From: "bot@example.com",
			},
			expected: true,
		},
		{name: "empty", config: common.SMTPConfig{}, expected: false},
		{
			name:     "missing credentials",
			config:   common.SMTPConfig{Host: "smtp.gmail.com", From: "bot@example.com"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&tt.config, arbor.NewLogger())
			assert.Equal(t, tt.expected, service.IsConfigured())
		})
	}
}

func TestBuildMessage_Multipart(t *testing.T) {
	msg := buildMessage("Vigilo", "bot@example.com", "ops@example.com", "Report", "<p>html</p>", "text", nil)

	assert.Contains(t, msg, "From: Vigilo <bot@example.com>")
	assert.Contains(t, msg, "To: ops@example.com")
	assert.Contains(t, msg, "Subject: Report")
	assert.Contains(t, msg, "MIME-Version: 1.0")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=\"UTF-8\"")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"")
	// Bodies are base64 encoded, not embedded raw
	assert.NotContains(t, msg, "<p>html</p>")
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	attachments := []interfaces.MailAttachment{
		{Filename: "report.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 fake")},
	}

	msg := buildMessage("Vigilo", "bot@example.com", "ops@example.com", "Report", "<p>html</p>", "", attachments)

	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, "Content-Disposition: attachment; filename=\"report.pdf\"")
	assert.Contains(t, msg, "Content-Type: application/pdf; name=\"report.pdf\"")
}

func TestEncodeBase64WithLineBreaks(t *testing.T) {
	long := strings.Repeat("a", 200)
	encoded := encodeBase64WithLineBreaks(long)

	for _, line := range strings.Split(encoded, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		name     string
		analyses []models.Analysis
		contains string
	}{
		{
			name:     "no documents",
			analyses: nil,
			contains: "No New Updates",
		},
		{
			name: "single section single document",
			analyses: []models.Analysis{
				{Section: models.SectionNotifications},
			},
			contains: "DGFT Notifications Updates",
		},
		{
			name: "multiple sections",
			analyses: []models.Analysis{
				{Section: models.SectionNotifications},
				{Section: models.SectionCirculars},
			},
			contains: "Across 2 Categories",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, FormatSubject(tt.analyses), tt.contains)
		})
	}
}

func TestFormatReportHTML(t *testing.T) {
	run := &models.RunResult{
		Summary: "Two new notifications.",
		Analyses: []models.Analysis{
			{Section: models.SectionNotifications, Date: "2024-03-01", Title: "Gold import restriction", Summary: "## Summary\nRestricted."},
		},
	}

	body := FormatReportHTML(run)

	assert.Contains(t, body, "DGFT Regulatory Updates Report")
	assert.Contains(t, body, "Two new notifications.")
	assert.Contains(t, body, "Gold import restriction")
	assert.Contains(t, body, "Notifications - 2024-03-01")
}

func TestSendFailsWhenUnconfigured(t *testing.T) {
	service := NewService(&common.SMTPConfig{}, arbor.NewLogger())

	err := service.SendHTMLEmail(context.Background(), "ops@example.com", "subject", "<p>body</p>", "body")

	assert.Error(t, err)
}
