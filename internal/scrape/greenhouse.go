package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Greenhouse fetches the configured company boards from the Greenhouse
// public boards API. The API has no search endpoint, so the keyword and
// location filters are applied client-side.
type Greenhouse struct {
	client  *Client
	baseURL string
	boards  []config.BoardConfig
}

func newGreenhouse(c *Client, cfg config.ScraperConfig) model.SourceAdapter {
	var boards []config.BoardConfig
	for _, b := range cfg.Boards {
		if b.ATS == "greenhouse" {
			boards = append(boards, b)
		}
	}
	return &Greenhouse{client: c, baseURL: greenhouseBaseURL, boards: boards}
}

func (g *Greenhouse) Name() string { return "greenhouse" }

func (g *Greenhouse) Search(ctx context.Context, keyword, location string) ([]model.Listing, error) {
	var out []model.Listing
	for _, board := range g.boards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/%s/jobs", g.baseURL, board.Token)
		body, err := g.client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("greenhouse board %s: %w", board.Token, err)
		}

		var resp greenhouseResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("greenhouse board %s: %w", board.Token, err)
		}

		for _, gj := range resp.Jobs {
			if !keywordMatches(gj.Title, keyword) {
				continue
			}
			if !locationMatches(gj.Location.Name, location) {
				continue
			}
			out = append(out, model.Listing{
				Title:      gj.Title,
				Company:    board.Name,
				Location:   gj.Location.Name,
				URL:        gj.AbsoluteURL,
				DatePosted: gj.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (g *Greenhouse) Close() error { return nil }
