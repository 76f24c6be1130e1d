package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"jobradar/internal/model"
	"jobradar/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedAdapter returns the same candidates for every (keyword, location).
type fixedAdapter struct {
	name     string
	listings []model.Listing
	err      error
	mu       sync.Mutex
	calls    int
}

func (a *fixedAdapter) Name() string { return a.name }

func (a *fixedAdapter) Search(_ context.Context, _, _ string) ([]model.Listing, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.listings, nil
}

func (a *fixedAdapter) Close() error { return nil }

// recordingDispatcher reports a scripted verdict and records every call.
type recordingDispatcher struct {
	ok      bool
	mu      sync.Mutex
	batches [][]model.Listing
	dryRuns []bool
}

func (d *recordingDispatcher) Deliver(_ context.Context, listings []model.Listing, dryRun bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, listings)
	d.dryRuns = append(d.dryRuns, dryRun)
	return d.ok
}

func candidate() model.Listing {
	return model.Listing{Title: "Backend Engineer", Company: "Acme", URL: "https://x/1"}
}

func TestOnce_DiscoversScoresAndPersists(t *testing.T) {
	s := newTestStore(t)
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{a}, d, Options{Keywords: []string{"Engineer"}}, testLogger())

	// Dry run so the unnotified set stays observable afterwards.
	newCount, err := o.Once(context.Background(), true)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 1 {
		t.Errorf("newCount = %d, want 1", newCount)
	}

	total, err := s.TotalListings()
	if err != nil {
		t.Fatalf("TotalListings: %v", err)
	}
	if total != 1 {
		t.Errorf("TotalListings = %d, want 1", total)
	}

	unnotified, err := s.UnnotifiedListings()
	if err != nil {
		t.Fatalf("UnnotifiedListings: %v", err)
	}
	if len(unnotified) != 1 {
		t.Fatalf("len(unnotified) = %d, want 1", len(unnotified))
	}
	if unnotified[0].Score < 45 {
		t.Errorf("score = %v, want >= 45 (whole keyword + token)", unnotified[0].Score)
	}
	if unnotified[0].Source != "a" {
		t.Errorf("source = %q, want adapter name", unnotified[0].Source)
	}
}

func TestOnce_DedupsAcrossKeywordPasses(t *testing.T) {
	s := newTestStore(t)
	// Two keywords make the adapter surface the same candidate twice in one run.
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{a}, d,
		Options{Keywords: []string{"Engineer", "Backend"}}, testLogger())

	newCount, err := o.Once(context.Background(), true)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 1 {
		t.Errorf("newCount = %d, want 1 (same identity seen twice)", newCount)
	}
	total, _ := s.TotalListings()
	if total != 1 {
		t.Errorf("TotalListings = %d, want 1", total)
	}
	if a.calls != 2 {
		t.Errorf("adapter calls = %d, want one per keyword", a.calls)
	}
}

func TestOnce_DispatchSuccessMarksNotified(t *testing.T) {
	s := newTestStore(t)
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{a}, d, Options{Keywords: []string{"Engineer"}}, testLogger())
	if _, err := o.Once(context.Background(), false); err != nil {
		t.Fatalf("Once: %v", err)
	}

	unnotified, err := s.UnnotifiedListings()
	if err != nil {
		t.Fatalf("UnnotifiedListings: %v", err)
	}
	if len(unnotified) != 0 {
		t.Errorf("len(unnotified) = %d, want 0 after successful dispatch", len(unnotified))
	}
}

func TestOnce_DispatchFailureKeepsBacklog(t *testing.T) {
	s := newTestStore(t)
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: false}

	o := New(s, []model.SourceAdapter{a}, d, Options{Keywords: []string{"Engineer"}}, testLogger())
	if _, err := o.Once(context.Background(), false); err != nil {
		t.Fatalf("Once: %v", err)
	}

	unnotified, err := s.UnnotifiedListings()
	if err != nil {
		t.Fatalf("UnnotifiedListings: %v", err)
	}
	if len(unnotified) != 1 {
		t.Errorf("len(unnotified) = %d, want 1 retained for the next run", len(unnotified))
	}
}

func TestOnce_DryRunNonMutation(t *testing.T) {
	s := newTestStore(t)
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{a}, d, Options{Keywords: []string{"Engineer"}}, testLogger())
	if _, err := o.Once(context.Background(), true); err != nil {
		t.Fatalf("Once: %v", err)
	}

	// Discoveries are persisted, but nothing gains notified=true.
	unnotified, err := s.UnnotifiedListings()
	if err != nil {
		t.Fatalf("UnnotifiedListings: %v", err)
	}
	if len(unnotified) != 1 {
		t.Errorf("len(unnotified) = %d, want 1 after dry run", len(unnotified))
	}
	if len(d.dryRuns) != 1 || !d.dryRuns[0] {
		t.Error("dispatcher should have been called with dryRun=true")
	}
}

func TestOnce_BacklogFlushedOnLaterRun(t *testing.T) {
	s := newTestStore(t)
	a := &fixedAdapter{name: "a", listings: []model.Listing{candidate()}}

	// First run: dispatch fails, backlog retained.
	failing := &recordingDispatcher{ok: false}
	o := New(s, []model.SourceAdapter{a}, failing, Options{Keywords: []string{"Engineer"}}, testLogger())
	if _, err := o.Once(context.Background(), false); err != nil {
		t.Fatalf("first Once: %v", err)
	}

	// Second run discovers nothing new but must still flush the backlog.
	succeeding := &recordingDispatcher{ok: true}
	o2 := New(s, []model.SourceAdapter{a}, succeeding, Options{Keywords: []string{"Engineer"}}, testLogger())
	newCount, err := o2.Once(context.Background(), false)
	if err != nil {
		t.Fatalf("second Once: %v", err)
	}
	if newCount != 0 {
		t.Errorf("newCount = %d, want 0 (nothing new discovered)", newCount)
	}
	if len(succeeding.batches) != 1 || len(succeeding.batches[0]) != 1 {
		t.Fatalf("dispatcher batches = %v, want the one backlog listing", succeeding.batches)
	}
	unnotified, _ := s.UnnotifiedListings()
	if len(unnotified) != 0 {
		t.Errorf("backlog not flushed: %d listings still unnotified", len(unnotified))
	}
}

func TestOnce_EmptyRunStillReachesDispatcher(t *testing.T) {
	s := newTestStore(t)
	quiet := &fixedAdapter{name: "quiet"} // never returns a candidate
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{quiet}, d, Options{Keywords: []string{"Engineer"}}, testLogger())
	newCount, err := o.Once(context.Background(), false)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 0 {
		t.Errorf("newCount = %d, want 0", newCount)
	}

	// Channels handle the empty set themselves (e.g. email's send_empty),
	// so the orchestrator must still hand it over.
	if len(d.batches) != 1 {
		t.Fatalf("dispatcher calls = %d, want 1 even with nothing pending", len(d.batches))
	}
	if len(d.batches[0]) != 0 {
		t.Errorf("batch = %v, want empty set", d.batches[0])
	}
}

func TestOnce_AdapterFailureDoesNotAbortRun(t *testing.T) {
	s := newTestStore(t)
	broken := &fixedAdapter{name: "broken", err: errors.New("site changed")}
	healthy := &fixedAdapter{name: "healthy", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{broken, healthy}, d,
		Options{Keywords: []string{"Engineer"}}, testLogger())

	newCount, err := o.Once(context.Background(), true)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 1 {
		t.Errorf("newCount = %d, want 1 from the healthy adapter", newCount)
	}
}

func TestOnce_ParallelAdapters(t *testing.T) {
	s := newTestStore(t)
	// Three adapters returning the same identity: exactly one row may land.
	a1 := &fixedAdapter{name: "a1", listings: []model.Listing{candidate()}}
	a2 := &fixedAdapter{name: "a2", listings: []model.Listing{candidate()}}
	a3 := &fixedAdapter{name: "a3", listings: []model.Listing{candidate()}}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{a1, a2, a3}, d,
		Options{Keywords: []string{"Engineer"}, Parallel: true}, testLogger())

	newCount, err := o.Once(context.Background(), true)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 1 {
		t.Errorf("newCount = %d, want 1", newCount)
	}
	total, _ := s.TotalListings()
	if total != 1 {
		t.Errorf("TotalListings = %d, want 1", total)
	}
}

func TestEffectiveKeywords_MergeAndCollapse(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddKeyword("ML Eng"); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if err := s.AddKeyword("golang"); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}

	o := New(s, nil, &recordingDispatcher{ok: true},
		Options{Keywords: []string{"Golang", "  backend  ", ""}}, testLogger())

	merged, err := o.effectiveKeywords()
	if err != nil {
		t.Fatalf("effectiveKeywords: %v", err)
	}

	got := make(map[string]bool)
	for _, kw := range merged {
		got[kw] = true
	}
	if len(merged) != 3 {
		t.Errorf("merged = %v, want 3 entries (Golang/golang collapsed, blank dropped)", merged)
	}
	if !got["Golang"] || !got["backend"] || !got["ML Eng"] {
		t.Errorf("merged = %v, missing expected keywords", merged)
	}
}

func TestOnce_RunRecordClosedEvenWhenAllAdaptersFail(t *testing.T) {
	s := newTestStore(t)
	broken := &fixedAdapter{name: "broken", err: errors.New("down")}
	d := &recordingDispatcher{ok: true}

	o := New(s, []model.SourceAdapter{broken}, d, Options{Keywords: []string{"x"}}, testLogger())
	newCount, err := o.Once(context.Background(), false)
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	if newCount != 0 {
		t.Errorf("newCount = %d, want 0", newCount)
	}
}
