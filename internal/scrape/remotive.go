package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

const remotiveBaseURL = "https://remotive.com/api/remote-jobs"

type remotiveJob struct {
	Title            string `json:"title"`
	CompanyName      string `json:"company_name"`
	CandidateLoc     string `json:"candidate_required_location"`
	URL              string `json:"url"`
	PublicationDate  string `json:"publication_date"`
	Description      string `json:"description"` // HTML
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

// Remotive queries the Remotive remote-jobs API, which supports a real
// server-side keyword search.
type Remotive struct {
	client  *Client
	baseURL string
}

func newRemotive(c *Client, _ config.ScraperConfig) model.SourceAdapter {
	return &Remotive{client: c, baseURL: remotiveBaseURL}
}

func (r *Remotive) Name() string { return "remotive" }

func (r *Remotive) Search(ctx context.Context, keyword, location string) ([]model.Listing, error) {
	endpoint := fmt.Sprintf("%s?search=%s", r.baseURL, url.QueryEscape(keyword))
	body, err := r.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("remotive search %q: %w", keyword, err)
	}

	var resp remotiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("remotive search %q: %w", keyword, err)
	}

	var out []model.Listing
	for _, rj := range resp.Jobs {
		if !locationMatches(rj.CandidateLoc, location) {
			continue
		}
		out = append(out, model.Listing{
			Title:       rj.Title,
			Company:     rj.CompanyName,
			Location:    rj.CandidateLoc,
			URL:         rj.URL,
			Description: stripHTML(rj.Description),
			DatePosted:  rj.PublicationDate,
		})
	}
	return out, nil
}

func (r *Remotive) Close() error { return nil }
