package sourcing

import (
	"context"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelLookalike = "lookalike"

// LookalikeAdapter seeds new candidates from companies similar to the
// best existing leads. Transitions raise a lead's score to the new
// status's engagement floor, so minScore 70 selects leads that reached
// INTERESTED or beyond.
type LookalikeAdapter struct {
	leads    entity.LeadRepositoryInterface
	client   *apiClient
	minScore int
	seeds    int
}

func NewLookalikeAdapter(leads entity.LeadRepositoryInterface, baseURL, apiKey string, limiter *HostLimiter) *LookalikeAdapter {
	return &LookalikeAdapter{
		leads:    leads,
		client:   newAPIClient(baseURL, apiKey, limiter),
		minScore: 70,
		seeds:    10,
	}
}

func (a *LookalikeAdapter) Channel() string { return ChannelLookalike }

type similarRequest struct {
	Companies []string `json:"companies"`
	Limit     int      `json:"limit"`
}

func (a *LookalikeAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	topLeads, err := a.leads.ListTopScored(ctx, a.minScore, a.seeds)
	if err != nil {
		return nil, err
	}
	if len(topLeads) == 0 {
		// Nothing scored high enough yet to seed from.
		return nil, nil
	}

	seen := make(map[string]bool)
	var companies []string
	for _, lead := range topLeads {
		if lead.CompanyName != "" && !seen[lead.CompanyName] {
			seen[lead.CompanyName] = true
			companies = append(companies, lead.CompanyName)
		}
	}

	var response struct {
		Companies []companyRecord `json:"companies"`
	}
	err = a.client.postJSON(ctx, "/v1/companies/similar", similarRequest{Companies: companies, Limit: n}, &response)
	if err != nil {
		return nil, err
	}

	candidates := make([]usecase.Candidate, 0, len(response.Companies))
	for _, rec := range response.Companies {
		if rec.ContactEmail == "" || rec.CompanyName == "" {
			continue
		}
		candidates = append(candidates, usecase.Candidate{
			Email:         rec.ContactEmail,
			FirstName:     rec.FirstName,
			LastName:      rec.LastName,
			CompanyName:   rec.CompanyName,
			JobTitle:      rec.JobTitle,
			Location:      rec.Location,
			EmployeeCount: rec.EmployeeCount,
			CompanyType:   rec.CompanyType,
			Channel:       ChannelLookalike,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}
