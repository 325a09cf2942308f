package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista/ispconsole-backend/internal/config"
	"github.com/netvista/ispconsole-backend/internal/controller"
	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/render"
	"github.com/netvista/ispconsole-backend/internal/service"
)

// --- Mock repositories ---

type mockRecipientRepo struct{}

func (m *mockRecipientRepo) Search(typeFilter model.RecipientType, query, status string) ([]model.Recipient, error) {
	return []model.Recipient{}, nil
}

func (m *mockRecipientRepo) GetByRef(ref model.RecipientRef) (*model.Recipient, error) {
	if ref.Type != model.RecipientCustomer || ref.ID > 100 {
		return nil, appErrors.NewRecipientNotFound(ref.ID, ref.Type)
	}
	return &model.Recipient{
		ID:    ref.ID,
		Type:  ref.Type,
		Name:  "Customer",
		Email: "customer@example.com",
		Phone: "+254700000000",
	}, nil
}

type mockTemplateRepo struct{}

func (m *mockTemplateRepo) List(channel model.Channel) ([]model.MessageTemplate, error) {
	return nil, nil
}
func (m *mockTemplateRepo) GetByID(id int) (*model.MessageTemplate, error) {
	return nil, appErrors.NewTemplateNotFound(id)
}
func (m *mockTemplateRepo) Create(t *model.MessageTemplate) error { return nil }
func (m *mockTemplateRepo) Update(t *model.MessageTemplate) error { return nil }
func (m *mockTemplateRepo) Delete(id int) error                   { return nil }

type mockMessageRepo struct {
	mu      sync.Mutex
	created []*model.Message
}

func (m *mockMessageRepo) CreateBatch(msgs []*model.Message, templateID *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range msgs {
		msg.ID = len(m.created) + i + 1
		msg.Status = model.StatusPending
	}
	m.created = append(m.created, msgs...)
	return nil
}

func (m *mockMessageRepo) GetByID(id int) (*model.Message, error)             { return nil, nil }
func (m *mockMessageRepo) GetByProviderRef(ref string) (*model.Message, error) { return nil, nil }
func (m *mockMessageRepo) UpdateStatus(id int, status model.MessageStatus, sentAt *time.Time, lastError string) error {
	return nil
}
func (m *mockMessageRepo) List(filter model.MessageFilter) ([]model.Message, error) {
	return []model.Message{}, nil
}
func (m *mockMessageRepo) Stats(now time.Time) (*model.MessageStats, error) {
	return &model.MessageStats{Total: 10, SentToday: 4, SentYesterday: 2, DeliveryRate: 0.75}, nil
}

type noopQueue struct{}

func (noopQueue) Publish(topic string, body []byte) error                      { return nil }
func (noopQueue) Subscribe(topic string, handler func(body []byte) error) error { return nil }

// --- Helpers ---

func newController(msgRepo *mockMessageRepo) *controller.MessagingController {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dispatch := &service.DispatchService{
		TemplateRepo:  &mockTemplateRepo{},
		RecipientRepo: &mockRecipientRepo{},
		MessageRepo:   msgRepo,
		Queue:         noopQueue{},
		Resolver:      &render.Resolver{CompanyName: "NetVista"},
		Logger:        logger,
	}
	status := &service.StatusService{MessageRepo: msgRepo, Logger: logger}

	return &controller.MessagingController{
		DispatchService: dispatch,
		StatusService:   status,
		Communication: config.CommunicationConfig{
			Email: config.ChannelSettings{Enabled: true, BatchSize: 50},
			SMS:   config.ChannelSettings{Enabled: false, BatchSize: 100},
		},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// --- Tests ---

func TestSendReturnsQueuedCount(t *testing.T) {
	msgRepo := &mockMessageRepo{}
	ctrl := newController(msgRepo)

	w := postJSON(t, ctrl.Send, "/messages/send", map[string]interface{}{
		"channel": "email",
		"recipients": []map[string]interface{}{
			{"id": 1, "type": "customer"},
			{"id": 2, "type": "customer"},
		},
		"subject": "Notice",
		"content": "Planned maintenance tonight.",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result service.SendResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SentCount)
	assert.Len(t, msgRepo.created, 2)
}

func TestSendBatchSizeExceededIsBadRequest(t *testing.T) {
	msgRepo := &mockMessageRepo{}
	ctrl := newController(msgRepo)

	recipients := make([]map[string]interface{}, 51)
	for i := range recipients {
		recipients[i] = map[string]interface{}{"id": i + 1, "type": "customer"}
	}

	w := postJSON(t, ctrl.Send, "/messages/send", map[string]interface{}{
		"channel":    "email",
		"recipients": recipients,
		"subject":    "Notice",
		"content":    "body",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reduce selection to 50")
	assert.Empty(t, msgRepo.created, "no message rows on rejection")
}

func TestSendDisabledChannelIsBadRequest(t *testing.T) {
	msgRepo := &mockMessageRepo{}
	ctrl := newController(msgRepo)

	w := postJSON(t, ctrl.Send, "/messages/send", map[string]interface{}{
		"channel":    "sms",
		"recipients": []map[string]interface{}{{"id": 1, "type": "customer"}},
		"content":    "body",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sms channel is disabled")
	assert.Empty(t, msgRepo.created)
}

func TestSendUnknownRecipientTypeIsBadRequest(t *testing.T) {
	msgRepo := &mockMessageRepo{}
	ctrl := newController(msgRepo)

	w := postJSON(t, ctrl.Send, "/messages/send", map[string]interface{}{
		"channel": "email",
		"recipients": []map[string]interface{}{
			{"id": 1, "type": "customer"},
			{"id": 1, "type": "customers"},
		},
		"subject": "Notice",
		"content": "body",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown recipient type")
	assert.Empty(t, msgRepo.created)
}

func TestSendUnknownTemplateIsNotFound(t *testing.T) {
	ctrl := newController(&mockMessageRepo{})

	w := postJSON(t, ctrl.Send, "/messages/send", map[string]interface{}{
		"channel":     "email",
		"recipients":  []map[string]interface{}{{"id": 1, "type": "customer"}},
		"subject":     "Notice",
		"content":     "body",
		"template_id": 9,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewShowsUnresolvedTokens(t *testing.T) {
	ctrl := newController(&mockMessageRepo{})

	w := postJSON(t, ctrl.Preview, "/messages/preview", map[string]interface{}{
		"subject": "Hi {{first_name}}",
		"content": "From {{company_name}}",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var preview service.Preview
	require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
	assert.Equal(t, "Hi {{first_name}}", preview.Subject)
	assert.Equal(t, "From NetVista", preview.Content)
	assert.Equal(t, []string{"first_name"}, preview.Unresolved)
}

func TestStatsEndpoint(t *testing.T) {
	ctrl := newController(&mockMessageRepo{})

	req := httptest.NewRequest("GET", "/messages/stats", nil)
	w := httptest.NewRecorder()
	ctrl.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats model.MessageStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 10, stats.Total)
	assert.InDelta(t, 0.75, stats.DeliveryRate, 1e-9)
}

func TestSendInvalidBody(t *testing.T) {
	ctrl := newController(&mockMessageRepo{})

	req := httptest.NewRequest("POST", "/messages/send", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	ctrl.Send(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
