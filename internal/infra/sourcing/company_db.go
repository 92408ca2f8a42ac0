package sourcing

import (
	"context"
	"fmt"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelCompanyDB = "company_db"

// CompanyDatabaseAdapter queries a company-database export. This channel
// is the richest one: it carries headcount and company type, which feed
// deal-tier classification downstream.
type CompanyDatabaseAdapter struct {
	client *apiClient
}

func NewCompanyDatabaseAdapter(baseURL, apiKey string, limiter *HostLimiter) *CompanyDatabaseAdapter {
	return &CompanyDatabaseAdapter{client: newAPIClient(baseURL, apiKey, limiter)}
}

func (a *CompanyDatabaseAdapter) Channel() string { return ChannelCompanyDB }

type companyRecord struct {
	ContactEmail  string `json:"contact_email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CompanyName   string `json:"company_name"`
	JobTitle      string `json:"job_title"`
	EmployeeCount int    `json:"employee_count"`
	CompanyType   string `json:"company_type"`
	Location      string `json:"location"`
}

func (a *CompanyDatabaseAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	var response struct {
		Companies []companyRecord `json:"companies"`
	}
	if err := a.client.getJSON(ctx, fmt.Sprintf("/v1/companies?limit=%d", n), &response); err != nil {
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
			Channel:       ChannelCompanyDB,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}
