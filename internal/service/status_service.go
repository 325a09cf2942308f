package service

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/repository"
)

// StatusService is the delivery status tracker: it applies asynchronous
// provider outcomes to Message rows and serves the history/stats views. It is
// the only writer of message state after dispatch.
type StatusService struct {
	MessageRepo repository.MessageRepositoryInterface
	Logger      logrus.FieldLogger
}

// Apply performs one state transition. Events keyed by provider reference
// are resolved to a message first. Duplicate or out-of-order callbacks are
// tolerated: anything that would move a message backward along
// pending -> sent -> delivered -> opened is ignored, and failed is terminal.
func (s *StatusService) Apply(event model.StatusEvent) error {
	if !event.Status.Valid() {
		return errors.Errorf("unknown message status %q", event.Status)
	}

	msg, err := s.lookup(event)
	if err != nil {
		return err
	}
	if msg == nil {
		s.Logger.WithField("message_id", event.MessageID).
			WithField("provider_ref", event.ProviderRef).
			Warn("status event for unknown message dropped")
		return nil
	}

	if !model.CanTransition(msg.Channel, msg.Status, event.Status) {
		s.Logger.WithField("message_id", msg.ID).
			WithField("from", msg.Status).
			WithField("to", event.Status).
			Debug("ignoring non-forward status transition")
		return nil
	}

	// sent_at records the moment the message first left pending, which is
	// the dispatch attempt time even when that attempt failed.
	var sentAt *time.Time
	if msg.SentAt == nil {
		occurred := event.OccurredAt
		if occurred.IsZero() {
			occurred = time.Now()
		}
		sentAt = &occurred
	}

	return s.MessageRepo.UpdateStatus(msg.ID, event.Status, sentAt, event.Error)
}

func (s *StatusService) lookup(event model.StatusEvent) (*model.Message, error) {
	if event.MessageID != 0 {
		return s.MessageRepo.GetByID(event.MessageID)
	}
	if event.ProviderRef != "" {
		return s.MessageRepo.GetByProviderRef(event.ProviderRef)
	}
	return nil, errors.New("status event carries neither message id nor provider ref")
}

// History lists messages for the audit view.
func (s *StatusService) History(filter model.MessageFilter) ([]model.Message, error) {
	return s.MessageRepo.List(filter)
}

// Stats returns the rollup derived entirely from the messages table.
func (s *StatusService) Stats() (*model.MessageStats, error) {
	return s.MessageRepo.Stats(time.Now())
}
