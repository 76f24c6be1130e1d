// Package scrape holds the source-adapter contract and the site adapters.
// Every adapter implements model.SourceAdapter; the orchestrator never
// learns which sites exist or how they fetch.
package scrape

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"jobradar/internal/config"
	"jobradar/internal/model"
)

// Constructor builds one adapter over the shared client.
type Constructor func(c *Client, cfg config.ScraperConfig) model.SourceAdapter

// registry maps a config name to its adapter constructor.
var registry = map[string]Constructor{
	"greenhouse":     newGreenhouse,
	"lever":          newLever,
	"remotive":       newRemotive,
	"remoteok":       newRemoteOK,
	"weworkremotely": newWeWorkRemotely,
}

// Available returns the registered adapter names.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Build instantiates the enabled adapters, skipping unknown names with a
// warning so a config typo degrades rather than aborts.
func Build(enabled []string, c *Client, cfg config.ScraperConfig, logger *slog.Logger) []model.SourceAdapter {
	var adapters []model.SourceAdapter
	for _, name := range enabled {
		ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			logger.Warn("unknown scraper in config, skipping", "name", name)
			continue
		}
		adapters = append(adapters, ctor(c, cfg))
		logger.Info("loaded scraper", "name", name)
	}
	return adapters
}

// keywordMatches reports whether any token of the keyword appears in the
// haystack. Board adapters fetch whole boards and filter client-side with
// this; query adapters use it to drop server-side noise.
func keywordMatches(haystack, keyword string) bool {
	hay := strings.ToLower(haystack)
	for _, word := range strings.Fields(strings.ToLower(keyword)) {
		if strings.Contains(hay, word) {
			return true
		}
	}
	return false
}

// locationMatches treats the remote/any sentinel as "no filter" and
// otherwise requires a case-insensitive substring hit. An empty listing
// location passes: many remote boards omit it.
func locationMatches(listingLocation, want string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	if w == "" || w == "remote" || w == "any" {
		return true
	}
	if strings.TrimSpace(listingLocation) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(listingLocation), w)
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// stripHTML converts an HTML or HTML-encoded string to plain text:
// unescape entities, drop tags, collapse whitespace.
func stripHTML(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}
