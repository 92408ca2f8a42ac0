package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/infra/http/middleware"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

type ContactHandler struct {
	UseCase *usecase.ContactLeadUseCase
}

func NewContactHandler(uc *usecase.ContactLeadUseCase) *ContactHandler {
	return &ContactHandler{UseCase: uc}
}

// Handle sends one outbound message to a lead. A compliance denial is a
// 403 carrying the decision, not an error.
func (h *ContactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "leadID is required", http.StatusBadRequest)
		return
	}

	var request struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if request.Subject == "" || request.Body == "" {
		http.Error(w, "subject and body are required", http.StatusBadRequest)
		return
	}

	conversationType := entity.ConversationInitialOutreach
	if request.Type != "" {
		conversationType = entity.ConversationType(request.Type)
	}

	decision, err := h.UseCase.Execute(r.Context(), usecase.ContactLeadInput{
		LeadID:  leadID,
		Subject: request.Subject,
		Body:    request.Body,
		Type:    conversationType,
	})
	if err != nil {
		var domainErr *usecase.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "LEAD_NOT_FOUND" {
			http.Error(w, "Lead not found", http.StatusNotFound)
			return
		}
		middleware.RecordEmailSent("failure")
		log.Printf("[contact] send failed for %s: %v", leadID, err)
		http.Error(w, "Send failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !decision.Allowed {
		middleware.RecordComplianceDenial(string(decision.Reason))
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(decision)
		return
	}

	middleware.RecordEmailSent("success")
	json.NewEncoder(w).Encode(decision)
}
