package controller

import (
	"encoding/json"
	"net/http"

	"github.com/netvista/ispconsole-backend/internal/service"
)

type RecipientController struct {
	RecipientService *service.RecipientService
}

// Search serves the recipient selector: type filter, free-text search and
// status filter, returning the full de-duplicated pool in a stable order.
func (c *RecipientController) Search(w http.ResponseWriter, r *http.Request) {
	typeFilter := r.URL.Query().Get("type")
	query := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")

	recipients, err := c.RecipientService.Search(typeFilter, query, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": recipients,
	})
}
