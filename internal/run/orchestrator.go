// Package run drives one full scrape→dedup→notify cycle.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"jobradar/internal/model"
	"jobradar/internal/scrape"
)

// Options configures an Orchestrator.
type Options struct {
	Keywords  []string // configured; persisted overrides are merged per run
	Locations []string // empty defaults to the remote/any sentinel
	Tags      []string
	Timeout   time.Duration // per adapter search call
	Parallel  bool          // one goroutine per adapter; an adapter is never concurrent with itself
	Export    Exporter      // optional per-run CSV dump
}

// Exporter receives the unnotified digest after each run when configured.
type Exporter interface {
	Append(listings []model.Listing) error
}

// Orchestrator owns the run pipeline: expand the search space, invoke each
// adapter through the safety wrapper, dedup and persist through the store,
// then hand the unnotified backlog to the dispatcher.
type Orchestrator struct {
	store      model.Store
	adapters   []model.SourceAdapter
	dispatcher model.Dispatcher
	opts       Options
	logger     *slog.Logger
}

// New creates an orchestrator wired with all its dependencies.
func New(store model.Store, adapters []model.SourceAdapter, dispatcher model.Dispatcher, opts Options, logger *slog.Logger) *Orchestrator {
	if len(opts.Locations) == 0 {
		opts.Locations = []string{"Remote"}
	}
	return &Orchestrator{
		store:      store,
		adapters:   adapters,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Once executes a full cycle and returns the count of newly discovered
// listings — not the count notified: a run can find nothing new and still
// flush a backlog left by an earlier failed dispatch.
//
// The run record is always closed, even when every adapter fails; only a
// store read failure aborts, since proceeding without the unnotified set
// risks re-notification.
func (o *Orchestrator) Once(ctx context.Context, dryRun bool) (int, error) {
	runID, err := o.store.StartRun()
	if err != nil {
		return 0, fmt.Errorf("starting run: %w", err)
	}
	o.logger.Info("run started", "run_id", runID, "dry_run", dryRun)

	keywords, err := o.effectiveKeywords()
	if err != nil {
		o.closeRun(runID, 0, model.RunStatusError)
		return 0, err
	}

	newCount := o.scrapeAll(ctx, keywords)
	o.logger.Info("scrape phase done", "run_id", runID, "new_listings", newCount)

	unnotified, err := o.store.UnnotifiedListings()
	if err != nil {
		o.closeRun(runID, newCount, model.RunStatusError)
		return newCount, fmt.Errorf("loading unnotified listings: %w", err)
	}

	// The dispatcher always sees the set, empty included: channels decide
	// for themselves whether a "nothing new" digest goes out (send_empty).
	ok := o.dispatcher.Deliver(ctx, unnotified, dryRun)
	if ok && !dryRun && len(unnotified) > 0 {
		if err := o.store.MarkNotified(unnotified); err != nil {
			// Degraded: the listings stay unnotified and will be
			// re-dispatched next run.
			o.logger.Error("marking notified failed", "run_id", runID, "error", err)
		}
	} else if !ok {
		o.logger.Warn("dispatch failed, listings kept for next run",
			"run_id", runID, "pending", len(unnotified))
	}

	if o.opts.Export != nil {
		if err := o.opts.Export.Append(unnotified); err != nil {
			o.logger.Error("csv export failed", "run_id", runID, "error", err)
		}
	}

	status := model.RunStatusOK
	if ctx.Err() != nil {
		status = model.RunStatusError
	}
	o.closeRun(runID, newCount, status)

	total, err := o.store.TotalListings()
	if err == nil {
		o.logger.Info("run finished", "run_id", runID, "new_listings", newCount, "total_listings", total)
	}
	return newCount, nil
}

// scrapeAll walks the adapter × keyword × location space. Each adapter is
// serialized with itself (a single underlying session per adapter); in
// parallel mode the adapters run concurrently while the store serializes
// writes.
func (o *Orchestrator) scrapeAll(ctx context.Context, keywords []string) int {
	var newCount atomic.Int64

	scrapeAdapter := func(a model.SourceAdapter) {
		for _, keyword := range keywords {
			for _, location := range o.opts.Locations {
				// Stop requests are honored between triples, never mid-fetch.
				if ctx.Err() != nil {
					return
				}
				o.logger.Info("scraping",
					"source", a.Name(), "keyword", keyword, "location", location)

				listings := scrape.SafeSearch(ctx, a, keyword, location, o.opts.Tags, o.opts.Timeout, o.logger)
				for _, l := range listings {
					isNew, err := o.store.IsNew(l.URL, l.Title, l.Company)
					if err != nil {
						o.logger.Error("dedup check failed", "source", a.Name(), "error", err)
						continue
					}
					// Save is the authority: two racing discoveries can both
					// pass IsNew, but only one insert lands.
					if isNew && o.store.Save(l) {
						newCount.Add(1)
					}
				}
			}
		}
	}

	if o.opts.Parallel {
		var g errgroup.Group
		for _, a := range o.adapters {
			g.Go(func() error {
				scrapeAdapter(a)
				return nil
			})
		}
		g.Wait()
	} else {
		for _, a := range o.adapters {
			scrapeAdapter(a)
		}
	}

	return int(newCount.Load())
}

// effectiveKeywords merges the configured keywords with the persisted
// overrides: union, trimmed, case-insensitive duplicates collapsed. The
// merged set carries no ordering guarantee.
func (o *Orchestrator) effectiveKeywords() ([]string, error) {
	stored, err := o.store.ListKeywords()
	if err != nil {
		return nil, fmt.Errorf("loading keyword overrides: %w", err)
	}

	seen := make(map[string]struct{})
	var merged []string
	for _, kw := range append(append([]string{}, o.opts.Keywords...), stored...) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, kw)
	}
	return merged, nil
}

// Close releases every adapter's resources.
func (o *Orchestrator) Close() {
	for _, a := range o.adapters {
		if err := a.Close(); err != nil {
			o.logger.Warn("closing adapter", "source", a.Name(), "error", err)
		}
	}
}

func (o *Orchestrator) closeRun(runID int64, newCount int, status string) {
	if err := o.store.FinishRun(runID, newCount, status); err != nil {
		o.logger.Error("closing run record", "run_id", runID, "error", err)
	}
}
