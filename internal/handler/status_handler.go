package handler

import (
	"encoding/json"
	"net/http"

	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/service"
)

// StatusHandler is the HTTP form of the delivery-status inbox: providers that
// call back over a webhook land here, providers wired through the broker land
// on the delivery_status queue. Both feed the same tracker.
type StatusHandler struct {
	StatusService *service.StatusService
}

func (h *StatusHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	var event model.StatusEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if event.MessageID == 0 && event.ProviderRef == "" {
		http.Error(w, "message_id or provider_ref is required", http.StatusBadRequest)
		return
	}

	if err := h.StatusService.Apply(event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
