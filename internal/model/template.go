package model

import "time"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// MessageTemplate is a reusable message skeleton. The body (and subject, for
// email) may contain {{variable_name}} placeholders that are substituted at
// compose time.
type MessageTemplate struct {
	ID         int        `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Category   string     `db:"category" json:"category"`
	Channel    Channel    `db:"channel" json:"channel"`
	Subject    string     `db:"subject" json:"subject,omitempty"`
	Body       string     `db:"body" json:"body"`
	UsageCount int        `db:"usage_count" json:"usage_count"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
