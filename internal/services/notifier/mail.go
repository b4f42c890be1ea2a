package notifier

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Mail sends messages over SMTP.
type Mail struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewMail creates the channel.
func NewMail(host string, port int, username, password, from, to string) *Mail {
	return &Mail{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

// Name implements Notifier.
func (m *Mail) Name() string { return "mail" }

// Send delivers the message as a plain-text email. An empty subject gets a
// generic one so mail clients do not flag the message.
func (m *Mail) Send(ctx context.Context, subject, body string) error {
	if subject == "" {
		subject = "DCA bot notification"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return errors.Wrap(err, "send mail")
	}
}
