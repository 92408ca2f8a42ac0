package sourcing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelSocialMentions = "social_mentions"

// SocialMentionsAdapter finds people publicly discussing the problem
// space and resolves their profile to a work address when the search
// provider has one.
type SocialMentionsAdapter struct {
	client *apiClient
	query  string
}

func NewSocialMentionsAdapter(baseURL, apiKey, query string, limiter *HostLimiter) *SocialMentionsAdapter {
	return &SocialMentionsAdapter{client: newAPIClient(baseURL, apiKey, limiter), query: query}
}

func (a *SocialMentionsAdapter) Channel() string { return ChannelSocialMentions }

type mention struct {
	AuthorEmail string `json:"author_email"`
	AuthorName  string `json:"author_name"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location"`
}

func (a *SocialMentionsAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	var response struct {
		Mentions []mention `json:"mentions"`
	}
	path := fmt.Sprintf("/v1/mentions?query=%s&limit=%d", url.QueryEscape(a.query), n)
	if err := a.client.getJSON(ctx, path, &response); err != nil {
		return nil, err
	}

	candidates := make([]usecase.Candidate, 0, len(response.Mentions))
	for _, m := range response.Mentions {
		if m.AuthorEmail == "" || m.Company == "" {
			continue
		}
		first, last := splitName(m.AuthorName)
		candidates = append(candidates, usecase.Candidate{
			Email:       m.AuthorEmail,
			FirstName:   first,
			LastName:    last,
			CompanyName: m.Company,
			JobTitle:    m.Role,
			Location:    m.Location,
			Channel:     ChannelSocialMentions,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}
