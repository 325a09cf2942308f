// internal/controller/messaging_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/netvista/ispconsole-backend/internal/config"
	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/service"
)

type MessagingController struct {
	DispatchService *service.DispatchService
	StatusService   *service.StatusService

	// Communication settings snapshot injected per process start; passed
	// into every dispatch call so tests can vary it.
	Communication config.CommunicationConfig
}

func (c *MessagingController) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.DispatchService.ComposeAndSend(r.Context(), c.Communication, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (c *MessagingController) Preview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	preview := c.DispatchService.RenderPreview(body.Subject, body.Content)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(preview)
}

func (c *MessagingController) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	filter := model.MessageFilter{
		Channel: model.Channel(r.URL.Query().Get("channel")),
		Status:  model.MessageStatus(r.URL.Query().Get("status")),
		Search:  r.URL.Query().Get("q"),
		Limit:   limit,
	}

	messages, err := c.StatusService.History(filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": messages,
	})
}

func (c *MessagingController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.StatusService.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// writeServiceError maps the dispatch/template error taxonomy onto HTTP
// status codes. Validation failures carry actionable text for the operator.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *appErrors.ErrTemplateNotFound, *appErrors.ErrRecipientNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case *appErrors.ErrTemplateInUse:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		if appErrors.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
