// internal/errors/errors.go
package appErrors

import (
	"fmt"

	"github.com/netvista/ispconsole-backend/internal/model"
)

// Dispatch precondition errors. All of these are detected before any Message
// row is created and surface synchronously to the caller.

type ErrInvalidChannel struct {
	Channel model.Channel
}

func (e *ErrInvalidChannel) Error() string {
	return fmt.Sprintf("unknown channel %q, expected email or sms", e.Channel)
}

type ErrInvalidRecipientType struct {
	Type model.RecipientType
}

func (e *ErrInvalidRecipientType) Error() string {
	return fmt.Sprintf("unknown recipient type %q, expected customer or employee", e.Type)
}

type ErrChannelDisabled struct {
	Channel model.Channel
}

func (e *ErrChannelDisabled) Error() string {
	return fmt.Sprintf("the %s channel is disabled in communication settings", e.Channel)
}

type ErrNoRecipients struct{}

func (e *ErrNoRecipients) Error() string {
	return "no recipients selected"
}

type ErrBatchSizeExceeded struct {
	Channel   model.Channel
	Limit     int
	Requested int
}

func (e *ErrBatchSizeExceeded) Error() string {
	return fmt.Sprintf("%d recipients selected for %s, reduce selection to %d or fewer",
		e.Requested, e.Channel, e.Limit)
}

type ErrContentRequired struct{}

func (e *ErrContentRequired) Error() string {
	return "message content is required"
}

type ErrSubjectRequired struct{}

func (e *ErrSubjectRequired) Error() string {
	return "a subject is required for email messages"
}

// ErrMissingContact rejects a dispatch that would otherwise silently skip a
// recipient with no usable contact field for the chosen channel.
type ErrMissingContact struct {
	Channel   model.Channel
	Recipient string
}

func (e *ErrMissingContact) Error() string {
	return fmt.Sprintf("recipient %q has no contact address for %s", e.Recipient, e.Channel)
}

type ErrTemplateNotFound struct {
	TemplateID int
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template with ID %d not found", e.TemplateID)
}

// ErrTemplateInUse blocks deletion of a template that historical messages
// still reference, preserving the audit trail.
type ErrTemplateInUse struct {
	TemplateID   int
	MessageCount int
}

func (e *ErrTemplateInUse) Error() string {
	return fmt.Sprintf("template with ID %d is referenced by %d sent messages and cannot be deleted",
		e.TemplateID, e.MessageCount)
}

type ErrRecipientNotFound struct {
	ID   int
	Type model.RecipientType
}

func (e *ErrRecipientNotFound) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Type, e.ID)
}

// Helper constructors

func NewTemplateNotFound(id int) error {
	return &ErrTemplateNotFound{TemplateID: id}
}

func NewTemplateInUse(id, messages int) error {
	return &ErrTemplateInUse{TemplateID: id, MessageCount: messages}
}

func NewRecipientNotFound(id int, typ model.RecipientType) error {
	return &ErrRecipientNotFound{ID: id, Type: typ}
}

// IsValidation reports whether err is one of the dispatch precondition
// failures that map to a client error rather than a server fault.
func IsValidation(err error) bool {
	switch err.(type) {
	case *ErrInvalidChannel, *ErrInvalidRecipientType, *ErrChannelDisabled,
		*ErrNoRecipients, *ErrBatchSizeExceeded, *ErrContentRequired,
		*ErrSubjectRequired, *ErrMissingContact:
		return true
	}
	return false
}
