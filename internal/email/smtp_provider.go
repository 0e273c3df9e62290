package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends mail over SMTP via gomail.
type SMTPProvider struct {
	config Config
	dialer *gomail.Dialer
}

func NewSMTPProvider(config Config) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (p *SMTPProvider) Send(msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.Body != "" {
		m.SetBody("text/plain", msg.Body)
	}
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	return p.dialer.DialAndSend(m)
}

func (p *SMTPProvider) SendWelcome(to, name string) error {
	body, err := renderBody("welcome", templateData{UserName: name})
	if err != nil {
		return err
	}
	return p.Send(&Message{
		To:       []string{to},
		Subject:  "Welcome to ResumeCraft",
		HTMLBody: body,
	})
}

func (p *SMTPProvider) SendTrialExpired(to, name string) error {
	body, err := renderBody("trial_expired", templateData{UserName: name})
	if err != nil {
		return err
	}
	return p.Send(&Message{
		To:       []string{to},
		Subject:  "Your ResumeCraft trial has ended",
		HTMLBody: body,
	})
}

func (p *SMTPProvider) SendSubscriptionExpiring(to, name string, hoursLeft int) error {
	body, err := renderBody("subscription_expiring", templateData{UserName: name, HoursLeft: hoursLeft})
	if err != nil {
		return err
	}
	return p.Send(&Message{
		To:       []string{to},
		Subject:  "Your ResumeCraft subscription is expiring soon",
		HTMLBody: body,
	})
}

func (p *SMTPProvider) Close() error {
	return nil
}
