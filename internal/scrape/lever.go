package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Team       string `json:"team"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Commitment string `json:"commitment"`
}

type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	HostedURL        string          `json:"hostedUrl"`
}

// Lever fetches the configured company boards from the Lever public
// postings API and filters client-side, like Greenhouse.
type Lever struct {
	client  *Client
	baseURL string
	boards  []config.BoardConfig
}

func newLever(c *Client, cfg config.ScraperConfig) model.SourceAdapter {
	var boards []config.BoardConfig
	for _, b := range cfg.Boards {
		if b.ATS == "lever" {
			boards = append(boards, b)
		}
	}
	return &Lever{client: c, baseURL: leverBaseURL, boards: boards}
}

func (l *Lever) Name() string { return "lever" }

func (l *Lever) Search(ctx context.Context, keyword, location string) ([]model.Listing, error) {
	var out []model.Listing
	for _, board := range l.boards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/%s?mode=json", l.baseURL, board.Token)
		body, err := l.client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("lever board %s: %w", board.Token, err)
		}

		var jobs []leverJob
		if err := json.Unmarshal(body, &jobs); err != nil {
			return nil, fmt.Errorf("lever board %s: %w", board.Token, err)
		}

		for _, lj := range jobs {
			if !keywordMatches(lj.Text, keyword) {
				continue
			}
			if !locationMatches(lj.Categories.Location, location) {
				continue
			}
			posted := ""
			if lj.CreatedAt > 0 {
				posted = time.UnixMilli(lj.CreatedAt).UTC().Format("2006-01-02")
			}
			out = append(out, model.Listing{
				Title:       lj.Text,
				Company:     board.Name,
				Location:    lj.Categories.Location,
				URL:         lj.HostedURL,
				Description: lj.DescriptionPlain,
				DatePosted:  posted,
			})
		}
	}
	return out, nil
}

func (l *Lever) Close() error { return nil }
