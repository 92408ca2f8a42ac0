package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/outreachlabs/leadengine/internal/entity"
)

// Candidate is the normalized record every source adapter returns.
type Candidate struct {
	Email         string
	FirstName     string
	LastName      string
	CompanyName   string
	JobTitle      string
	Location      string
	EmployeeCount int
	CompanyType   string
	Channel       string
}

// SourceAdapter fetches up to n candidates from one external channel.
// Adapters are mutually independent; one failing never blocks another.
type SourceAdapter interface {
	Channel() string
	Fetch(ctx context.Context, n int) ([]Candidate, error)
}

// IngestStore commits one candidate as a lead plus its LEAD_CREATED audit
// entry in a single transaction. A unique-index loser comes back as
// entity.ErrDuplicateLead.
type IngestStore interface {
	CreateLead(ctx context.Context, lead *entity.Lead, audit *entity.AuditLogEntry) error
}

type IngestResult struct {
	Created       int               `json:"created"`
	Skipped       int               `json:"skipped"`
	Rejected      int               `json:"rejected"`
	Failed        int               `json:"failed"`
	ChannelErrors map[string]string `json:"channel_errors,omitempty"`
}

type SourceAndIngestUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Store    IngestStore
	Gate     *EmailGate
	Adapters []SourceAdapter

	AdapterTimeout time.Duration
	FetchRetries   int
	RetryBackoff   time.Duration
}

func NewSourceAndIngestUseCase(leads entity.LeadRepositoryInterface, store IngestStore, gate *EmailGate, adapters []SourceAdapter) *SourceAndIngestUseCase {
	return &SourceAndIngestUseCase{
		Leads:          leads,
		Store:          store,
		Gate:           gate,
		Adapters:       adapters,
		AdapterTimeout: 60 * time.Second,
		FetchRetries:   2,
		RetryBackoff:   2 * time.Second,
	}
}

// Execute runs every adapter with a quota, then pushes each candidate
// through dedupe, the email gate and the name heuristic. Each accepted
// candidate commits on its own, so one failure never rolls back a batch,
// and re-running with the same external data only bumps the skipped
// counter.
func (uc *SourceAndIngestUseCase) Execute(ctx context.Context, quotas map[string]int) (*IngestResult, error) {
	result := &IngestResult{ChannelErrors: make(map[string]string)}

	var mu sync.Mutex
	var candidates []Candidate

	g := new(errgroup.Group)
	for _, adapter := range uc.Adapters {
		adapter := adapter
		quota := quotas[adapter.Channel()]
		if quota <= 0 {
			continue
		}

		g.Go(func() error {
			fetched, err := uc.fetchWithRetry(ctx, adapter, quota)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failure := &ExternalChannelFailure{Channel: adapter.Channel(), Err: err}
				log.Printf("[ingest] %v", failure)
				result.ChannelErrors[adapter.Channel()] = err.Error()
				return nil // isolated: never cancels sibling adapters
			}
			candidates = append(candidates, fetched...)
			return nil
		})
	}
	g.Wait()

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			// Graceful cancellation mid-batch. Everything committed so
			// far already carries its audit entry.
			return result, ctx.Err()
		}
		uc.processCandidate(ctx, candidate, result)
	}

	return result, nil
}

func (uc *SourceAndIngestUseCase) fetchWithRetry(ctx context.Context, adapter SourceAdapter, quota int) ([]Candidate, error) {
	var lastErr error
	for attempt := 0; attempt <= uc.FetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(uc.RetryBackoff * time.Duration(attempt)):
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, uc.AdapterTimeout)
		fetched, err := adapter.Fetch(fetchCtx, quota)
		cancel()
		if err == nil {
			return fetched, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (uc *SourceAndIngestUseCase) processCandidate(ctx context.Context, candidate Candidate, result *IngestResult) {
	email := strings.ToLower(strings.TrimSpace(candidate.Email))

	exists, err := uc.Leads.ExistsByEmail(ctx, email)
	if err != nil {
		log.Printf("[ingest] duplicate check failed for %s: %v", email, err)
		result.Failed++
		return
	}
	if exists {
		result.Skipped++
		return
	}

	if verdict := uc.Gate.Check(ctx, email); verdict != VerdictValid {
		result.Rejected++
		return
	}

	if candidate.FirstName != "" && !LooksLikeRealFirstName(candidate.FirstName) {
		result.Rejected++
		return
	}

	lead, err := entity.NewLead(email, candidate.FirstName, candidate.LastName, candidate.CompanyName, candidate.JobTitle, candidate.Channel)
	if err != nil {
		result.Rejected++
		return
	}
	lead.Location = candidate.Location
	lead.EmployeeCount = candidate.EmployeeCount
	lead.CompanyType = candidate.CompanyType

	audit := entity.NewAuditLogEntry(lead.ID, entity.ActionLeadCreated, "Sourced from "+candidate.Channel, map[string]any{
		"email":   lead.Email,
		"channel": candidate.Channel,
	})

	if err := uc.Store.CreateLead(ctx, lead, audit); err != nil {
		if errors.Is(err, entity.ErrDuplicateLead) {
			// Lost the race against another adapter. Expected, not an error.
			result.Skipped++
			return
		}
		log.Printf("[ingest] insert failed for %s: %v", email, err)
		result.Failed++
		return
	}

	result.Created++
}
