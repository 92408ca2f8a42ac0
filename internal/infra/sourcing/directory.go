package sourcing

import (
	"context"
	"fmt"
	"strings"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelStartupDirectory = "startup_directory"

// StartupDirectoryAdapter walks startup directory listings (launch
// sites, accelerator batches) for founder contacts.
type StartupDirectoryAdapter struct {
	client *apiClient
}

func NewStartupDirectoryAdapter(baseURL, apiKey string, limiter *HostLimiter) *StartupDirectoryAdapter {
	return &StartupDirectoryAdapter{client: newAPIClient(baseURL, apiKey, limiter)}
}

func (a *StartupDirectoryAdapter) Channel() string { return ChannelStartupDirectory }

type directoryEntry struct {
	FounderEmail string `json:"founder_email"`
	FounderName  string `json:"founder_name"`
	StartupName  string `json:"startup_name"`
	TeamSize     int    `json:"team_size"`
	Category     string `json:"category"`
	Location     string `json:"location"`
}

func (a *StartupDirectoryAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	var response struct {
		Startups []directoryEntry `json:"startups"`
	}
	if err := a.client.getJSON(ctx, fmt.Sprintf("/v1/startups?limit=%d", n), &response); err != nil {
		return nil, err
	}

	candidates := make([]usecase.Candidate, 0, len(response.Startups))
	for _, e := range response.Startups {
		if e.FounderEmail == "" || e.StartupName == "" {
			continue
		}
		first, last := splitName(e.FounderName)
		candidates = append(candidates, usecase.Candidate{
			Email:         e.FounderEmail,
			FirstName:     first,
			LastName:      last,
			CompanyName:   e.StartupName,
			JobTitle:      "Founder",
			Location:      e.Location,
			EmployeeCount: e.TeamSize,
			CompanyType:   strings.ToLower(e.Category),
			Channel:       ChannelStartupDirectory,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
