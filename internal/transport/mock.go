package transport

import (
	"context"

	"github.com/sirupsen/logrus"
)

// The mock transports log instead of sending. They are wired in when no
// provider credentials are configured, so the stack runs end to end in
// development.

type mockSms struct{}

func (mockSms) Send(ctx context.Context, number, message string) error {
	logrus.WithField("number", number).Info("mock sms send")
	return nil
}

type mockEmail struct{}

func (mockEmail) Send(ctx context.Context, email, subject, body string) error {
	logrus.WithField("email", email).WithField("subject", subject).Info("mock email send")
	return nil
}

func NewMockSmsTransport() SmsTransport     { return mockSms{} }
func NewMockEmailTransport() EmailTransport { return mockEmail{} }
