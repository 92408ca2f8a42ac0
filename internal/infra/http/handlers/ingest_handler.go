package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/outreachlabs/leadengine/internal/infra/http/middleware"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// QuotaStore hands out the per-channel quotas the volume loop last wrote.
type QuotaStore interface {
	LoadQuotas(ctx context.Context) (map[string]int, error)
}

type IngestHandler struct {
	UseCase *usecase.SourceAndIngestUseCase
	Quotas  QuotaStore
}

func NewIngestHandler(uc *usecase.SourceAndIngestUseCase, quotas QuotaStore) *IngestHandler {
	return &IngestHandler{UseCase: uc, Quotas: quotas}
}

// Handle triggers a sourcing run. The caller may pin quotas in the body;
// otherwise the run uses whatever the volume control loop decided last.
func (h *IngestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Quotas map[string]int `json:"quotas"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, "Bad JSON", http.StatusBadRequest)
			return
		}
	}

	quotas := request.Quotas
	if len(quotas) == 0 {
		stored, err := h.Quotas.LoadQuotas(r.Context())
		if err != nil {
			log.Printf("[ingest] failed to load quotas: %v", err)
			http.Error(w, "Could not load sourcing quotas", http.StatusInternalServerError)
			return
		}
		quotas = stored
	}
	if len(quotas) == 0 {
		http.Error(w, "No sourcing quotas configured yet", http.StatusConflict)
		return
	}

	result, err := h.UseCase.Execute(r.Context(), quotas)
	if err != nil {
		log.Printf("[ingest] run aborted: %v", err)
		http.Error(w, "Sourcing run aborted", http.StatusInternalServerError)
		return
	}

	middleware.RecordIngestOutcome("created", result.Created)
	middleware.RecordIngestOutcome("skipped", result.Skipped)
	middleware.RecordIngestOutcome("rejected", result.Rejected)
	middleware.RecordIngestOutcome("failed", result.Failed)
	for channel := range result.ChannelErrors {
		middleware.RecordChannelFailure(channel)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
