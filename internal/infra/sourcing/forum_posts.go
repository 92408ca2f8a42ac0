package sourcing

import (
	"context"
	"fmt"
	"regexp"

	"github.com/outreachlabs/leadengine/internal/usecase"
)

const ChannelForumPosts = "forum_posts"

var postEmailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ForumPostsAdapter scans monthly "who's hiring" threads. Posts are free
// text, so the email is extracted by regex and the company is whatever
// the poster declared.
type ForumPostsAdapter struct {
	client *apiClient
}

func NewForumPostsAdapter(baseURL, apiKey string, limiter *HostLimiter) *ForumPostsAdapter {
	return &ForumPostsAdapter{client: newAPIClient(baseURL, apiKey, limiter)}
}

func (a *ForumPostsAdapter) Channel() string { return ChannelForumPosts }

type forumPost struct {
	Author  string `json:"author"`
	Company string `json:"company"`
	Text    string `json:"text"`
}

func (a *ForumPostsAdapter) Fetch(ctx context.Context, n int) ([]usecase.Candidate, error) {
	var response struct {
		Posts []forumPost `json:"posts"`
	}
	if err := a.client.getJSON(ctx, fmt.Sprintf("/v1/threads/hiring/latest?limit=%d", n), &response); err != nil {
		return nil, err
	}

	candidates := make([]usecase.Candidate, 0, len(response.Posts))
	for _, post := range response.Posts {
		email := postEmailRegex.FindString(post.Text)
		if email == "" || post.Company == "" {
			continue
		}
		candidates = append(candidates, usecase.Candidate{
			Email:       email,
			CompanyName: post.Company,
			JobTitle:    "Hiring manager",
			Channel:     ChannelForumPosts,
		})
		if len(candidates) == n {
			break
		}
	}
	return candidates, nil
}
