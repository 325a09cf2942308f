package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/service"
)

type TemplateController struct {
	TemplateService *service.TemplateService
}

type templatePayload struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Channel  model.Channel `json:"channel"`
	Subject  string        `json:"subject"`
	Body     string        `json:"body"`
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	channel := model.Channel(r.URL.Query().Get("channel"))

	templates, err := c.TemplateService.List(channel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": templates,
	})
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}

	template, err := c.TemplateService.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(template)
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var body templatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	template, err := c.TemplateService.Create(&model.MessageTemplate{
		Name:     body.Name,
		Category: body.Category,
		Channel:  body.Channel,
		Subject:  body.Subject,
		Body:     body.Body,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(template)
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}

	var body templatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	template, err := c.TemplateService.Update(&model.MessageTemplate{
		ID:       id,
		Name:     body.Name,
		Category: body.Category,
		Channel:  body.Channel,
		Subject:  body.Subject,
		Body:     body.Body,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(template)
}

func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid template id", http.StatusBadRequest)
		return
	}

	if err := c.TemplateService.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
