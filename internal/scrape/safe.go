package scrape

import (
	"context"
	"log/slog"
	"time"

	"jobradar/internal/model"
	"jobradar/internal/score"
)

// SafeSearch is the safety boundary around an adapter. It applies the
// per-call timeout, recovers a panicking adapter, converts any failure into
// an empty result with a logged diagnostic, and tags and scores every
// candidate that comes back. Nothing escapes this function: a misbehaving
// source costs its own results, never the run.
func SafeSearch(ctx context.Context, a model.SourceAdapter, keyword, location string, tags []string, timeout time.Duration, logger *slog.Logger) []model.Listing {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	listings := func() (out []model.Listing) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("adapter panicked",
					"source", a.Name(),
					"keyword", keyword,
					"location", location,
					"panic", r,
				)
				out = nil
			}
		}()

		ls, err := a.Search(ctx, keyword, location)
		if err != nil {
			logger.Warn("search failed",
				"source", a.Name(),
				"keyword", keyword,
				"location", location,
				"error", err,
			)
			return nil
		}
		return ls
	}()

	for i := range listings {
		listings[i].Source = a.Name()
		listings[i].Score = score.Relevance(listings[i], keyword, tags)
	}
	return listings
}
