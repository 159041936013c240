package email

import (
	"portal_backend/internal/logger"
)

// NoopProvider используется, когда SMTP не настроен: письма только логируются
type NoopProvider struct{}

func (NoopProvider) Send(email *Email) error {
	logger.Warn("SMTP is not configured, email dropped", "to", email.To, "subject", email.Subject)
	return nil
}

func (p NoopProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return p.Send(&Email{To: to, Subject: subject})
}

func (p NoopProvider) SendVerification(to string, link string) error {
	logger.Debug("verification link", "to", to, "link", link)
	return p.Send(&Email{To: []string{to}, Subject: "Verify your email"})
}

func (p NoopProvider) SendResetCode(to string, code string, ttlMinutes int) error {
	return p.Send(&Email{To: []string{to}, Subject: "Your password reset code"})
}

func (NoopProvider) Validate() error { return nil }
