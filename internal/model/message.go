package model

import "time"

type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusOpened    MessageStatus = "opened"
	StatusFailed    MessageStatus = "failed"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusDelivered, StatusOpened, StatusFailed:
		return true
	}
	return false
}

// statusRank orders the happy path pending -> sent -> delivered -> opened.
// failed sits outside the rank and is handled separately.
var statusRank = map[MessageStatus]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusOpened:    3,
}

// CanTransition reports whether a delivery callback may move a message of the
// given channel from one status to another. Transitions are monotonic along
// the happy path; a callback that would move a message backward is ignored by
// the tracker. failed is terminal and only reachable from pending or sent.
// opened is an email-only read receipt.
func CanTransition(channel Channel, from, to MessageStatus) bool {
	if from == StatusFailed {
		return false
	}
	if to == StatusFailed {
		return from == StatusPending || from == StatusSent
	}
	if to == StatusOpened && channel != ChannelEmail {
		return false
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// Message is the unit of delivery and the audit record: one row per recipient
// per dispatch. The recipient contact is embedded as a plain string, never a
// foreign key, so history survives recipient deletion. Rows are append-only
// except for status, sent_at and last_error.
type Message struct {
	ID            int           `db:"id" json:"id"`
	Channel       Channel       `db:"channel" json:"channel"`
	Recipient     string        `db:"recipient" json:"recipient"`
	RecipientName string        `db:"recipient_name" json:"recipient_name"`
	Subject       string        `db:"subject" json:"subject,omitempty"`
	Content       string        `db:"content" json:"content"`
	TemplateID    *int          `db:"template_id" json:"template_id,omitempty"`
	ProviderRef   string        `db:"provider_ref" json:"provider_ref"`
	Status        MessageStatus `db:"status" json:"status"`
	LastError     string        `db:"last_error" json:"last_error,omitempty"`
	SentAt        *time.Time    `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// StatusEvent is one asynchronous delivery outcome from the sending channel,
// keyed by message id or by the provider-assigned reference.
type StatusEvent struct {
	MessageID   int           `json:"message_id,omitempty"`
	ProviderRef string        `json:"provider_ref,omitempty"`
	Status      MessageStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// MessageStats is the rollup view recomputed from the messages table.
type MessageStats struct {
	Total         int     `json:"total"`
	SentToday     int     `json:"sent_today"`
	SentYesterday int     `json:"sent_yesterday"`
	DeliveryRate  float64 `json:"delivery_rate"`
	UnreadCount   int     `json:"unread_count"`
}

// MessageFilter narrows the history listing.
type MessageFilter struct {
	Channel Channel
	Status  MessageStatus
	Search  string
	Limit   int
}
