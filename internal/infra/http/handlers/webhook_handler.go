package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/outreachlabs/leadengine/internal/infra/http/middleware"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// InboundPublisher hands webhook events to the queue. The consumer side
// applies them in arrival order.
type InboundPublisher interface {
	PublishInboundEvent(ctx context.Context, event usecase.InboundEvent) error
}

type WebhookHandler struct {
	Producer InboundPublisher
}

func NewWebhookHandler(producer InboundPublisher) *WebhookHandler {
	return &WebhookHandler{Producer: producer}
}

var knownEventTypes = map[string]bool{
	usecase.EventTypeBounce:      true,
	usecase.EventTypeComplaint:   true,
	usecase.EventTypeUnsubscribe: true,
	usecase.EventTypeReply:       true,
}

// Handle validates the envelope and enqueues the event. The provider
// retries anything but 2xx, so the only 5xx left is a publish failure,
// where a retry is exactly what we want.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event usecase.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	if event.EventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}
	if !knownEventTypes[event.EventType] {
		// Unknown types are acknowledged so the provider stops resending.
		log.Printf("[webhook] ignoring unknown event type %q (%s)", event.EventType, event.EventID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if event.LeadID == "" && event.LeadEmail == "" {
		http.Error(w, "lead_id or lead_email is required", http.StatusBadRequest)
		return
	}

	if err := h.Producer.PublishInboundEvent(r.Context(), event); err != nil {
		log.Printf("[webhook] publish failed for %s: %v", event.EventID, err)
		http.Error(w, "Queue unavailable", http.StatusInternalServerError)
		return
	}

	middleware.RecordInboundEvent(event.EventType)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued", "event_id": event.EventID})
}
