package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

type RevenueHandler struct {
	Leads      entity.LeadRepositoryInterface
	Calculator *usecase.RevenueCalculator
}

func NewRevenueHandler(leads entity.LeadRepositoryInterface, calculator *usecase.RevenueCalculator) *RevenueHandler {
	return &RevenueHandler{Leads: leads, Calculator: calculator}
}

// Handle recomputes the revenue picture from the lead population. No
// cached figures, so the numbers always match the database.
func (h *RevenueHandler) Handle(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.ListAll(r.Context())
	if err != nil {
		log.Printf("[revenue] listing leads failed: %v", err)
		http.Error(w, "Could not load leads", http.StatusInternalServerError)
		return
	}

	metrics := h.Calculator.Metrics(leads)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}
