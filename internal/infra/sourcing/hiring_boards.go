package sourcing

import (
	"context"
	"fmt"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelHiringBoards = "hiring_boards"

// HiringBoardsAdapter pulls contacts from developer-hiring board
// postings that list a direct contact address.
type HiringBoardsAdapter struct {
	client *apiClient
}

func NewHiringBoardsAdapter(baseURL, apiKey string, limiter *HostLimiter) *HiringBoardsAdapter {
	return &HiringBoardsAdapter{client: newAPIClient(baseURL, apiKey, limiter)}
}

func (a *HiringBoardsAdapter) Channel() string { return ChannelHiringBoards }

type boardPosting struct {
	ContactEmail string `json:"contact_email"`
	ContactName  string `json:"contact_name"`
	Company      string `json:"company"`
	Title        string `json:"title"`
	Location     string `json:"location"`
}

func (a *HiringBoardsAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	var response struct {
		Postings []boardPosting `json:"postings"`
	}
	if err := a.client.getJSON(ctx, fmt.Sprintf("/v1/postings?limit=%d", n), &response); err != nil {
		return nil, err
	}

	candidates := make([]usecase.Candidate, 0, len(response.Postings))
	for _, p := range response.Postings {
		if p.ContactEmail == "" || p.Company == "" {
			continue
		}
		first, last := splitName(p.ContactName)
		candidates = append(candidates, usecase.Candidate{
			Email:       p.ContactEmail,
			FirstName:   first,
			LastName:    last,
			CompanyName: p.Company,
			JobTitle:    p.Title,
			Location:    p.Location,
			Channel:     ChannelHiringBoards,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}
