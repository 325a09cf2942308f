// Package transport defines the delivery boundary to external email/SMS
// providers. The dispatcher only ever talks to these two interfaces; the wire
// format belongs to the provider adapters.
package transport

import "context"

type SmsTransport interface {
	Send(ctx context.Context, number, message string) error
}

type EmailTransport interface {
	Send(ctx context.Context, email, subject, body string) error
}
