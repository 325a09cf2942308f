package model

import "fmt"

type RecipientType string

const (
	RecipientCustomer RecipientType = "customer"
	RecipientEmployee RecipientType = "employee"
)

func (t RecipientType) Valid() bool {
	return t == RecipientCustomer || t == RecipientEmployee
}

// Recipient is a customer or employee eligible to receive a message. Rows are
// sourced live from the customer/employee tables at selection time; the
// dispatcher never persists a recipient beyond the contact string embedded in
// a Message.
//
// Numeric ids are only unique per type, so identity is always the (ID, Type)
// pair.
type Recipient struct {
	ID     int           `db:"id" json:"id"`
	Type   RecipientType `db:"recipient_type" json:"recipient_type"`
	Name   string        `db:"name" json:"name"`
	Email  string        `db:"email" json:"email"`
	Phone  string        `db:"phone" json:"phone"`
	Status string        `db:"status" json:"status"`
	Plan   string        `db:"plan" json:"plan,omitempty"`
}

// Key returns the identity pair as a map key for de-duplication.
func (r Recipient) Key() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Contact returns the channel-relevant contact field.
func (r Recipient) Contact(channel Channel) string {
	if channel == ChannelSMS {
		return r.Phone
	}
	return r.Email
}

// RecipientRef identifies one selected recipient in a send request.
type RecipientRef struct {
	ID   int           `json:"id"`
	Type RecipientType `json:"type"`
}
