package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/config"
	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/queue"
	"github.com/netvista/ispconsole-backend/internal/render"
	"github.com/netvista/ispconsole-backend/internal/repository"
)

// DispatchService is the central control point for bulk sends: it validates a
// request against channel policy, renders once per batch, creates one pending
// Message per recipient, and hands the batch to transport via the queue.
type DispatchService struct {
	TemplateRepo  repository.TemplateRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	MessageRepo   repository.MessageRepositoryInterface
	Queue         queue.Queue
	Resolver      *render.Resolver
	Logger        logrus.FieldLogger
}

type SendRequest struct {
	Channel    model.Channel       `json:"channel"`
	Recipients []model.RecipientRef `json:"recipients"`
	Subject    string              `json:"subject,omitempty"`
	Content    string              `json:"content"`
	TemplateID *int                `json:"template_id,omitempty"`
}

type SendResult struct {
	Success   bool   `json:"success"`
	SentCount int    `json:"sent_count"`
	Summary   string `json:"summary"`
}

// DispatchJob is the queue payload handed to the delivery worker.
type DispatchJob struct {
	MessageID int `json:"message_id"`
}

type Preview struct {
	Subject    string   `json:"subject,omitempty"`
	Content    string   `json:"content"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// RenderPreview resolves and renders subject/content without side effects.
// Unresolved {{name}} tokens stay literal so the operator can spot them.
func (s *DispatchService) RenderPreview(subject, content string) *Preview {
	names := render.ExtractVariables(subject, content)
	values := s.Resolver.Resolve(names)

	var unresolved []string
	for _, name := range names {
		if _, ok := values[name]; !ok {
			unresolved = append(unresolved, name)
		}
	}

	return &Preview{
		Subject:    render.Render(subject, values),
		Content:    render.Render(content, values),
		Unresolved: unresolved,
	}
}

// ComposeAndSend validates the request, creates all Message rows before any
// transport work begins, and returns once the batch is queued. Validation is
// all-or-nothing: no Message exists unless every precondition passed.
func (s *DispatchService) ComposeAndSend(ctx context.Context, comm config.CommunicationConfig, req SendRequest) (*SendResult, error) {
	if !req.Channel.Valid() {
		return nil, &appErrors.ErrInvalidChannel{Channel: req.Channel}
	}

	settings := comm.ForChannel(req.Channel)

	if !settings.Enabled {
		return nil, &appErrors.ErrChannelDisabled{Channel: req.Channel}
	}

	recipients, err := s.resolveRecipients(req.Channel, req.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, &appErrors.ErrNoRecipients{}
	}
	if len(recipients) > settings.BatchSize {
		return nil, &appErrors.ErrBatchSizeExceeded{
			Channel:   req.Channel,
			Limit:     settings.BatchSize,
			Requested: len(recipients),
		}
	}

	if req.Content == "" {
		return nil, &appErrors.ErrContentRequired{}
	}
	if req.Channel == model.ChannelEmail && req.Subject == "" {
		return nil, &appErrors.ErrSubjectRequired{}
	}

	if req.TemplateID != nil {
		if _, err := s.TemplateRepo.GetByID(*req.TemplateID); err != nil {
			return nil, err
		}
	}

	preview := s.RenderPreview(req.Subject, req.Content)

	msgs := make([]*model.Message, 0, len(recipients))
	for _, rec := range recipients {
		msgs = append(msgs, &model.Message{
			Channel:       req.Channel,
			Recipient:     rec.Contact(req.Channel),
			RecipientName: rec.Name,
			Subject:       preview.Subject,
			Content:       preview.Content,
			TemplateID:    req.TemplateID,
			ProviderRef:   uuid.NewString(),
		})
	}

	// CreateBatch also bumps the template usage counter once per dispatch,
	// in the same transaction as the rows.
	if err := s.MessageRepo.CreateBatch(msgs, req.TemplateID); err != nil {
		return nil, err
	}

	// Fire-and-forget handoff: transport outcomes are recorded per message
	// by the status tracker, never re-raised to this caller.
	for _, msg := range msgs {
		body, _ := json.Marshal(DispatchJob{MessageID: msg.ID})
		if err := s.Queue.Publish(queue.TopicDispatch, body); err != nil {
			s.Logger.WithError(err).
				WithField("message_id", msg.ID).
				Error("failed to enqueue message for delivery")
		}
	}

	return &SendResult{
		Success:   true,
		SentCount: len(msgs),
		Summary:   fmt.Sprintf("queued %d %s message(s)", len(msgs), req.Channel),
	}, nil
}

// resolveRecipients loads each referenced recipient, de-duplicating by the
// (id, type) pair. A recipient without a usable contact for the channel is a
// validation error, never a silent skip.
func (s *DispatchService) resolveRecipients(channel model.Channel, refs []model.RecipientRef) ([]model.Recipient, error) {
	seen := map[string]bool{}
	recipients := make([]model.Recipient, 0, len(refs))

	for _, ref := range refs {
		if !ref.Type.Valid() {
			return nil, &appErrors.ErrInvalidRecipientType{Type: ref.Type}
		}
		rec, err := s.RecipientRepo.GetByRef(ref)
		if err != nil {
			return nil, err
		}
		if seen[rec.Key()] {
			continue
		}
		seen[rec.Key()] = true

		if rec.Contact(channel) == "" {
			return nil, &appErrors.ErrMissingContact{Channel: channel, Recipient: rec.Name}
		}
		recipients = append(recipients, *rec)
	}

	return recipients, nil
}
