package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

const wwrBaseURL = "https://weworkremotely.com"

// WeWorkRemotely scrapes the WWR search results page. This is the one
// HTML-backed adapter; the listing markup is a flat job list under the
// jobs sections.
type WeWorkRemotely struct {
	client  *Client
	baseURL string
}

func newWeWorkRemotely(c *Client, _ config.ScraperConfig) model.SourceAdapter {
	return &WeWorkRemotely{client: c, baseURL: wwrBaseURL}
}

func (w *WeWorkRemotely) Name() string { return "weworkremotely" }

func (w *WeWorkRemotely) Search(ctx context.Context, keyword, location string) ([]model.Listing, error) {
	endpoint := fmt.Sprintf("%s/remote-jobs/search?term=%s", w.baseURL, url.QueryEscape(keyword))
	body, err := w.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely search %q: %w", keyword, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("weworkremotely search %q: %w", keyword, err)
	}

	var out []model.Listing
	doc.Find("section.jobs li").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("span.title").Text())
		if title == "" {
			return // header/footer rows in the list
		}
		company := strings.TrimSpace(s.Find("span.company").First().Text())
		region := strings.TrimSpace(s.Find("span.region").Text())

		href, _ := s.Find("a").Last().Attr("href")
		link := href
		if strings.HasPrefix(href, "/") {
			link = w.baseURL + href
		}

		if !locationMatches(region, location) {
			return
		}
		out = append(out, model.Listing{
			Title:    title,
			Company:  company,
			Location: region,
			URL:      link,
		})
	})
	return out, nil
}

func (w *WeWorkRemotely) Close() error { return nil }
