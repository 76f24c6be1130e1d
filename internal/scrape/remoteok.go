package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

const remoteokBaseURL = "https://remoteok.com/api"

type remoteokJob struct {
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// RemoteOK fetches the full RemoteOK feed (the API has no query parameter)
// and filters client-side. The first feed element is a legal notice with no
// position; it is skipped along with anything else that lacks one.
type RemoteOK struct {
	client  *Client
	baseURL string
}

func newRemoteOK(c *Client, _ config.ScraperConfig) model.SourceAdapter {
	return &RemoteOK{client: c, baseURL: remoteokBaseURL}
}

func (r *RemoteOK) Name() string { return "remoteok" }

func (r *RemoteOK) Search(ctx context.Context, keyword, location string) ([]model.Listing, error) {
	body, err := r.client.Get(ctx, r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("remoteok feed: %w", err)
	}

	var jobs []remoteokJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("remoteok feed: %w", err)
	}

	var out []model.Listing
	for _, rj := range jobs {
		if rj.Position == "" {
			continue
		}
		// Tags often carry the stack when the position title doesn't.
		hay := rj.Position
		for _, tag := range rj.Tags {
			hay += " " + tag
		}
		if !keywordMatches(hay, keyword) {
			continue
		}
		if !locationMatches(rj.Location, location) {
			continue
		}
		out = append(out, model.Listing{
			Title:       rj.Position,
			Company:     rj.Company,
			Location:    rj.Location,
			URL:         rj.URL,
			Description: stripHTML(rj.Description),
			DatePosted:  rj.Date,
		})
	}
	return out, nil
}

func (r *RemoteOK) Close() error { return nil }
