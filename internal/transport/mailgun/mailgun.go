package mailgun

import (
	"context"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"

	"github.com/netvista/ispconsole-backend/internal/transport"
)

type MailgunOption func(t *mailgunTransport)

func SetReplyTo(replyTo string) MailgunOption {
	return func(t *mailgunTransport) {
		t.replyTo = replyTo
	}
}

type mailgunTransport struct {
	mg mailgun.Mailgun

	from    string
	replyTo string
}

func NewMailgunTransport(mailgunClient mailgun.Mailgun, from string, options ...MailgunOption) transport.EmailTransport {
	t := &mailgunTransport{
		mg:   mailgunClient,
		from: from,
	}

	for _, option := range options {
		option(t)
	}

	return t
}

func (t *mailgunTransport) Send(ctx context.Context, email, subject, body string) error {
	msg := t.mg.NewMessage(t.from, subject, body, email)

	if t.replyTo != "" {
		msg.SetReplyTo(t.replyTo)
	}

	_, _, err := t.mg.Send(ctx, msg)
	return errors.Wrap(err, "failed to send message via mailgun")
}
