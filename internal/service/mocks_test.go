package service_test

import (
	"strings"
	"sync"
	"time"

	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
)

// In-memory repository fakes shared by the service tests.

type memTemplateRepo struct {
	mu        sync.Mutex
	templates map[int]*model.MessageTemplate
}

func newMemTemplateRepo(templates ...*model.MessageTemplate) *memTemplateRepo {
	r := &memTemplateRepo{templates: map[int]*model.MessageTemplate{}}
	for _, t := range templates {
		r.templates[t.ID] = t
	}
	return r
}

func (r *memTemplateRepo) List(channel model.Channel) ([]model.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.MessageTemplate{}
	for _, t := range r.templates {
		if channel == "" || t.Channel == channel {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTemplateRepo) GetByID(id int) (*model.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	copied := *t
	return &copied, nil
}

func (r *memTemplateRepo) Create(t *model.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = len(r.templates) + 1
	r.templates[t.ID] = t
	return nil
}

func (r *memTemplateRepo) Update(t *model.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return appErrors.NewTemplateNotFound(t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

func (r *memTemplateRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return appErrors.NewTemplateNotFound(id)
	}
	delete(r.templates, id)
	return nil
}

func (r *memTemplateRepo) incrementUsage(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return appErrors.NewTemplateNotFound(id)
	}
	t.UsageCount++
	return nil
}

type memRecipientRepo struct {
	recipients []model.Recipient
}

func (r *memRecipientRepo) Search(typeFilter model.RecipientType, query, status string) ([]model.Recipient, error) {
	out := []model.Recipient{}
	for _, rec := range r.recipients {
		if typeFilter != "" && rec.Type != typeFilter {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRecipientRepo) GetByRef(ref model.RecipientRef) (*model.Recipient, error) {
	if !ref.Type.Valid() {
		return nil, &appErrors.ErrInvalidRecipientType{Type: ref.Type}
	}
	for _, rec := range r.recipients {
		if rec.ID == ref.ID && rec.Type == ref.Type {
			copied := rec
			return &copied, nil
		}
	}
	return nil, appErrors.NewRecipientNotFound(ref.ID, ref.Type)
}

type memMessageRepo struct {
	mu        sync.Mutex
	messages  []*model.Message
	nextID    int
	templates *memTemplateRepo
}

func (r *memMessageRepo) CreateBatch(msgs []*model.Message, templateID *int) error {
	r.mu.Lock()
	for _, msg := range msgs {
		r.nextID++
		msg.ID = r.nextID
		msg.Status = model.StatusPending
		msg.CreatedAt = time.Now()
		r.messages = append(r.messages, msg)
	}
	r.mu.Unlock()

	if templateID != nil && r.templates != nil {
		return r.templates.incrementUsage(*templateID)
	}
	return nil
}

func (r *memMessageRepo) GetByID(id int) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) GetByProviderRef(ref string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ProviderRef == ref {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) UpdateStatus(id int, status model.MessageStatus, sentAt *time.Time, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			msg.Status = status
			if sentAt != nil {
				msg.SentAt = sentAt
			}
			msg.LastError = lastError
			return nil
		}
	}
	return nil
}

func (r *memMessageRepo) List(filter model.MessageFilter) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Message{}
	for _, msg := range r.messages {
		if filter.Channel != "" && msg.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && msg.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(msg, filter.Search) {
			continue
		}
		out = append(out, *msg)
	}
	return out, nil
}

func matchesSearch(msg *model.Message, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{msg.Recipient, msg.RecipientName, msg.Content} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (r *memMessageRepo) Stats(now time.Time) (*model.MessageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	stats := &model.MessageStats{Total: len(r.messages)}
	var attempted, deliveredOrBetter int
	for _, msg := range r.messages {
		if msg.SentAt != nil {
			if !msg.SentAt.Before(today) {
				stats.SentToday++
			} else if !msg.SentAt.Before(yesterday) {
				stats.SentYesterday++
			}
		}
		if msg.Status != model.StatusPending {
			attempted++
		}
		if msg.Status == model.StatusDelivered || msg.Status == model.StatusOpened {
			deliveredOrBetter++
		}
		if msg.Channel == model.ChannelEmail &&
			(msg.Status == model.StatusSent || msg.Status == model.StatusDelivered) {
			stats.UnreadCount++
		}
	}
	if attempted > 0 {
		stats.DeliveryRate = float64(deliveredOrBetter) / float64(attempted)
	}
	return stats, nil
}
