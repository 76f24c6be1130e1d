// Package store is the fingerprint store: a SQLite-backed record of every
// listing ever seen, plus keyword overrides and the run log. It is the only
// component that owns state across runs.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"jobradar/internal/model"
)

// Ensure SQLiteStore implements model.Store.
var _ model.Store = (*SQLiteStore)(nil)

// SQLiteStore persists listings keyed by their fingerprint hash.
//
// Write paths never fail the caller: a storage error is logged and surfaces
// as false / an error the orchestrator tolerates. Read paths return hard
// errors, because an empty result in place of a failed read could re-notify
// listings or break dedup.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// WAL keeps concurrent readers safe while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=15000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy_timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT,
		url         TEXT NOT NULL,
		source      TEXT,
		description TEXT,
		date_posted TEXT,
		score       REAL DEFAULT 0,
		discovered  DATETIME NOT NULL,
		notified    INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS keywords (
		keyword TEXT PRIMARY KEY,
		added   DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at   DATETIME NOT NULL,
		finished_at  DATETIME,
		new_listings INTEGER DEFAULT 0,
		status       TEXT DEFAULT 'running'
	);

	CREATE INDEX IF NOT EXISTS idx_listings_notified ON listings (notified);
	CREATE INDEX IF NOT EXISTS idx_listings_source   ON listings (source);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// IsNew reports whether no listing with the derived identity exists yet.
// Safe to call concurrently with writes from the same run; callers must
// still treat Save as the authority, since another goroutine may insert
// between the check and the write.
func (s *SQLiteStore) IsNew(url, title, company string) (bool, error) {
	id := model.Fingerprint(url, title, company)
	var one int
	err := s.db.QueryRow("SELECT 1 FROM listings WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking listing %s: %w", id, err)
	}
	return false, nil
}

// Save inserts the listing if its identity is absent. Returns true only
// when a new row was written; a duplicate or a failed write returns false.
// An existing row's score, timestamp, and notified flag are never touched.
func (s *SQLiteStore) Save(l model.Listing) bool {
	if l.Discovered.IsZero() {
		l.Discovered = time.Now().UTC()
	}

	query, args, err := sq.Insert("listings").
		Options("OR IGNORE").
		Columns("id", "title", "company", "location", "url", "source",
			"description", "date_posted", "score", "discovered", "notified").
		Values(l.Fingerprint(), l.Title, l.Company, l.Location, l.URL, l.Source,
			l.Description, l.DatePosted, l.Score, l.Discovered, 0).
		ToSql()
	if err != nil {
		s.logger.Error("building save query", "error", err)
		return false
	}

	res, err := s.db.Exec(query, args...)
	if err != nil {
		s.logger.Error("saving listing", "title", l.Title, "company", l.Company, "error", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Error("saving listing", "title", l.Title, "error", err)
		return false
	}
	return n > 0
}

// MarkNotified flips notified false→true for exactly the given listings.
// Idempotent: a listing already notified, or never saved, is unaffected.
// All updates commit or roll back together.
func (s *SQLiteStore) MarkNotified(listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("mark notified: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE listings SET notified = 1 WHERE id = ? AND notified = 0")
	if err != nil {
		return fmt.Errorf("mark notified: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.Exec(l.Fingerprint()); err != nil {
			return fmt.Errorf("mark notified %q: %w", l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark notified: commit: %w", err)
	}
	return nil
}

// UnnotifiedListings returns every listing not yet notified, most recent
// discovery first. Unbounded; callers truncate for display.
func (s *SQLiteStore) UnnotifiedListings() ([]model.Listing, error) {
	query, args, err := sq.Select("title", "company", "location", "url", "source",
		"description", "date_posted", "score", "discovered", "notified").
		From("listings").
		Where(sq.Eq{"notified": 0}).
		OrderBy("discovered DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building unnotified query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying unnotified listings: %w", err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		var notified int
		err := rows.Scan(&l.Title, &l.Company, &l.Location, &l.URL, &l.Source,
			&l.Description, &l.DatePosted, &l.Score, &l.Discovered, &notified)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		l.Notified = notified != 0
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return out, nil
}

// TotalListings returns the row count, for observability only.
func (s *SQLiteStore) TotalListings() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	return count, nil
}

// AddKeyword persists a keyword override. Whitespace is trimmed; storage is
// case-sensitive; adding a duplicate is a no-op.
func (s *SQLiteStore) AddKeyword(keyword string) error {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return fmt.Errorf("keyword is empty")
	}
	_, err := s.db.Exec("INSERT OR IGNORE INTO keywords (keyword, added) VALUES (?, ?)",
		kw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adding keyword %q: %w", kw, err)
	}
	return nil
}

// RemoveKeyword deletes a keyword override; removing an absent keyword is a
// no-op.
func (s *SQLiteStore) RemoveKeyword(keyword string) error {
	_, err := s.db.Exec("DELETE FROM keywords WHERE keyword = ?", strings.TrimSpace(keyword))
	if err != nil {
		return fmt.Errorf("removing keyword %q: %w", keyword, err)
	}
	return nil
}

// ListKeywords returns the persisted overrides in the order they were added.
func (s *SQLiteStore) ListKeywords() ([]string, error) {
	rows, err := s.db.Query("SELECT keyword FROM keywords ORDER BY added")
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keywords: %w", err)
	}
	return out, nil
}

// StartRun opens a run record and returns its id.
func (s *SQLiteStore) StartRun() (int64, error) {
	res, err := s.db.Exec("INSERT INTO run_log (started_at, status) VALUES (?, ?)",
		time.Now().UTC(), model.RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("starting run record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("starting run record: %w", err)
	}
	return id, nil
}

// FinishRun closes the run record with its new-listing count and terminal
// status.
func (s *SQLiteStore) FinishRun(runID int64, newCount int, status string) error {
	query, args, err := sq.Update("run_log").
		Set("finished_at", time.Now().UTC()).
		Set("new_listings", newCount).
		Set("status", status).
		Where(sq.Eq{"id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building finish-run query: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
