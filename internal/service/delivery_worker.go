package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/repository"
	"github.com/netvista/ispconsole-backend/internal/transport"
)

// DeliveryWorker performs the actual transport call for one queued message.
// Each message is independent: a transport failure marks that message failed
// and never touches its batch siblings.
type DeliveryWorker struct {
	MessageRepo repository.MessageRepositoryInterface
	Status      *StatusService
	Email       transport.EmailTransport
	SMS         transport.SmsTransport

	// Timeout bounds the transport call so a hung provider cannot leave a
	// message pending forever.
	Timeout time.Duration

	Logger logrus.FieldLogger
}

// Process sends one message and records the outcome through the status
// tracker. The returned error only reports infrastructure faults (lookup or
// bookkeeping); a transport rejection is a recorded outcome, not an error.
func (w *DeliveryWorker) Process(ctx context.Context, messageID int) error {
	msg, err := w.MessageRepo.GetByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		w.Logger.WithField("message_id", messageID).Warn("queued message not found")
		return nil
	}
	if msg.Status != model.StatusPending {
		// Redelivered job for a message that already has an outcome.
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	sendErr := w.send(sendCtx, msg)

	event := model.StatusEvent{
		MessageID:  msg.ID,
		OccurredAt: time.Now(),
	}
	if sendErr != nil {
		event.Status = model.StatusFailed
		if errors.Cause(sendErr) == context.DeadlineExceeded {
			event.Error = "transport timed out"
		} else {
			event.Error = sendErr.Error()
		}
		w.Logger.WithError(sendErr).
			WithField("message_id", msg.ID).
			Warn("transport send failed")
	} else {
		event.Status = model.StatusSent
	}

	return w.Status.Apply(event)
}

func (w *DeliveryWorker) send(ctx context.Context, msg *model.Message) error {
	switch msg.Channel {
	case model.ChannelSMS:
		return w.SMS.Send(ctx, msg.Recipient, msg.Content)
	case model.ChannelEmail:
		return w.Email.Send(ctx, msg.Recipient, msg.Subject, msg.Content)
	default:
		return errors.Errorf("unknown channel %q", msg.Channel)
	}
}
