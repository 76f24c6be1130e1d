package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Listing is the unified representation of a discovered job posting,
// whichever site it came from.
type Listing struct {
	Title       string
	Company     string
	Location    string    // may be empty
	URL         string    // may be empty
	Source      string    // adapter name, set by the safe-search wrapper
	Description string    // may be empty
	DatePosted  string    // free-form site text, deliberately unparsed
	Score       float64   // relevance, 0-100
	Discovered  time.Time // our clock, set on first persist
	Notified    bool
}

// Fingerprint returns the listing's durable identity.
func (l Listing) Fingerprint() string {
	return Fingerprint(l.URL, l.Title, l.Company)
}

// Fingerprint derives a stable identity hash from the (url, title, company)
// triple, case-folded and trimmed. The raw URL alone is not usable as a key
// because tracking parameters vary between requests to the same source.
func Fingerprint(url, title, company string) string {
	raw := canon(url) + "::" + canon(title) + "::" + canon(company)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Run log terminal states.
const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusError   = "error"
)

// SourceAdapter fetches candidate listings from one external site.
// Search returns an error for any internal failure; the caller's safety
// wrapper converts it to an empty result so one broken source never kills
// a run.
type SourceAdapter interface {
	Name() string
	Search(ctx context.Context, keyword, location string) ([]Listing, error)
	Close() error
}

// Store is the fingerprint store: the only component that keeps listings,
// keyword overrides, and run records across runs.
//
// Write paths (Save, MarkNotified, keyword CRUD) degrade on storage
// failure; read paths return hard errors because a silently empty result
// could re-notify or lose dedup guarantees.
type Store interface {
	IsNew(url, title, company string) (bool, error)
	Save(l Listing) bool
	MarkNotified(listings []Listing) error
	UnnotifiedListings() ([]Listing, error)
	TotalListings() (int, error)

	AddKeyword(keyword string) error
	RemoveKeyword(keyword string) error
	ListKeywords() ([]string, error)

	StartRun() (int64, error)
	FinishRun(runID int64, newCount int, status string) error
}

// Dispatcher delivers the unnotified digest to its channels. It must not
// panic; it reports the primary channel's success as a boolean. In dry-run
// mode it performs no external delivery but still reports success.
type Dispatcher interface {
	Deliver(ctx context.Context, listings []Listing, dryRun bool) bool
}
