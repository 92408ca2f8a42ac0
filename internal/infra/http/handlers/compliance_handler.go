package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// ComplianceHandler answers "may I contact this lead right now" without
// side effects. The write path runs the same engine again before sending.
type ComplianceHandler struct {
	Leads  entity.LeadRepositoryInterface
	Engine *usecase.ComplianceEngine
}

func NewComplianceHandler(leads entity.LeadRepositoryInterface, engine *usecase.ComplianceEngine) *ComplianceHandler {
	return &ComplianceHandler{Leads: leads, Engine: engine}
}

func (h *ComplianceHandler) Handle(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		http.Error(w, "leadID is required", http.StatusBadRequest)
		return
	}

	lead, err := h.Leads.FindByID(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			http.Error(w, "Lead not found", http.StatusNotFound)
			return
		}
		log.Printf("[compliance] lookup failed for %s: %v", leadID, err)
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	decision := h.Engine.CanContact(r.Context(), lead)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		LeadID string `json:"lead_id"`
		usecase.Decision
	}{LeadID: lead.ID, Decision: decision})
}
