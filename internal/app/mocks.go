package app

import (
	"resumecraft_backend/internal/email"
	"resumecraft_backend/internal/logger"
)

// LogEmailProvider stands in when SMTP is not configured; every send becomes
// a log line so local development works without a mail server.
type LogEmailProvider struct{}

func (p *LogEmailProvider) Send(msg *email.Message) error {
	logger.Info("email (not sent, smtp disabled)", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (p *LogEmailProvider) SendWelcome(to, name string) error {
	logger.Info("welcome email (not sent, smtp disabled)", "to", to, "name", name)
	return nil
}

func (p *LogEmailProvider) SendTrialExpired(to, name string) error {
	logger.Info("trial expired email (not sent, smtp disabled)", "to", to, "name", name)
	return nil
}

func (p *LogEmailProvider) SendSubscriptionExpiring(to, name string, hoursLeft int) error {
	logger.Info("subscription expiring email (not sent, smtp disabled)", "to", to, "name", name, "hours_left", hoursLeft)
	return nil
}

func (p *LogEmailProvider) Close() error { return nil }
