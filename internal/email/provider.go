package email

// Provider sends transactional mail. Callers treat every send as
// best-effort: failures are logged, never propagated into the primary
// operation.
type Provider interface {
	Send(msg *Message) error
	SendWelcome(to, name string) error
	SendTrialExpired(to, name string) error
	SendSubscriptionExpiring(to, name string, hoursLeft int) error
	Close() error
}

// Message is one outbound email.
type Message struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}
