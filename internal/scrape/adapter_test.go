package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobradar/internal/config"
)

func TestBuild_SkipsUnknownNames(t *testing.T) {
	adapters := Build([]string{"remotive", "myspace", "weworkremotely"}, testClient(0), config.ScraperConfig{}, testLogger())
	if len(adapters) != 2 {
		t.Fatalf("len = %d, want 2 (unknown name skipped)", len(adapters))
	}
}

func TestKeywordMatches(t *testing.T) {
	tests := []struct {
		haystack, keyword string
		want              bool
	}{
		{"Backend Engineer", "engineer", true},
		{"Backend Engineer", "Backend Engineer", true},
		{"Senior Engineer (Backend)", "backend engineer", true}, // any token
		{"Accountant", "engineer", false},
		{"GOLANG Developer", "golang", true},
	}
	for _, tt := range tests {
		if got := keywordMatches(tt.haystack, tt.keyword); got != tt.want {
			t.Errorf("keywordMatches(%q, %q) = %v, want %v", tt.haystack, tt.keyword, got, tt.want)
		}
	}
}

func TestLocationMatches(t *testing.T) {
	tests := []struct {
		loc, want string
		match     bool
	}{
		{"Berlin, Germany", "berlin", true},
		{"Berlin, Germany", "Remote", true}, // sentinel passes everything
		{"Berlin, Germany", "any", true},
		{"Berlin, Germany", "", true},
		{"", "Berlin", true}, // empty listing location passes
		{"New York, NY", "Berlin", false},
	}
	for _, tt := range tests {
		if got := locationMatches(tt.loc, tt.want); got != tt.match {
			t.Errorf("locationMatches(%q, %q) = %v, want %v", tt.loc, tt.want, got, tt.match)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>We&nbsp;use <b>Go</b> and\n  Kubernetes.</p>"
	want := "We use Go and Kubernetes."
	if got := stripHTML(in); got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}

func TestGreenhouse_Search(t *testing.T) {
	payload := `{
		"jobs": [
			{"id": 1, "title": "Backend Engineer", "location": {"name": "Remote, US"},
			 "absolute_url": "https://boards.greenhouse.io/acme/jobs/1", "updated_at": "2026-08-01T09:00:00Z"},
			{"id": 2, "title": "Accountant", "location": {"name": "Remote, US"},
			 "absolute_url": "https://boards.greenhouse.io/acme/jobs/2", "updated_at": "2026-08-02T09:00:00Z"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := config.ScraperConfig{Boards: []config.BoardConfig{
		{Name: "Acme", ATS: "greenhouse", Token: "acme"},
		{Name: "Other", ATS: "lever", Token: "other"}, // must be ignored
	}}
	g := newGreenhouse(testClient(0), cfg).(*Greenhouse)
	g.baseURL = srv.URL

	got, err := g.Search(context.Background(), "engineer", "Remote")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (accountant filtered out)", len(got))
	}
	l := got[0]
	if l.Title != "Backend Engineer" || l.Company != "Acme" {
		t.Errorf("listing = %+v", l)
	}
	if l.URL != "https://boards.greenhouse.io/acme/jobs/1" {
		t.Errorf("url = %q", l.URL)
	}
}

func TestRemotive_Search(t *testing.T) {
	payload := `{
		"jobs": [
			{"title": "Go Developer", "company_name": "Beta",
			 "candidate_required_location": "Worldwide",
			 "url": "https://remotive.com/jobs/1",
			 "publication_date": "2026-08-10T00:00:00",
			 "description": "<p>Build <b>services</b> in Go.</p>"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "go developer" {
			t.Errorf("search query = %q", got)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	rm := newRemotive(testClient(0), config.ScraperConfig{}).(*Remotive)
	rm.baseURL = srv.URL

	got, err := rm.Search(context.Background(), "go developer", "Remote")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Description != "Build services in Go." {
		t.Errorf("description = %q, want HTML stripped", got[0].Description)
	}
}

func TestRemoteOK_SkipsLegalNotice(t *testing.T) {
	payload := `[
		{"legal": "API terms of service..."},
		{"position": "Backend Engineer", "company": "Gamma", "location": "Worldwide",
		 "url": "https://remoteok.com/jobs/1", "date": "2026-08-12", "tags": ["golang"]}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	ro := newRemoteOK(testClient(0), config.ScraperConfig{}).(*RemoteOK)
	ro.baseURL = srv.URL

	got, err := ro.Search(context.Background(), "golang", "Remote")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (legal notice skipped, tag matched)", len(got))
	}
	if got[0].Company != "Gamma" {
		t.Errorf("company = %q", got[0].Company)
	}
}

func TestWeWorkRemotely_Search(t *testing.T) {
	page := `<html><body>
	<section class="jobs"><ul>
		<li>
			<a href="/remote-jobs/delta-backend-engineer">
				<span class="company">Delta</span>
				<span class="title">Backend Engineer</span>
				<span class="region company">Anywhere in the World</span>
			</a>
		</li>
		<li class="view-all"><a href="/categories/all">View all</a></li>
	</ul></section>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	w := newWeWorkRemotely(testClient(0), config.ScraperConfig{}).(*WeWorkRemotely)
	w.baseURL = srv.URL

	got, err := w.Search(context.Background(), "engineer", "Remote")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (view-all row skipped)", len(got))
	}
	l := got[0]
	if l.Title != "Backend Engineer" || l.Company != "Delta" {
		t.Errorf("listing = %+v", l)
	}
	if l.URL != srv.URL+"/remote-jobs/delta-backend-engineer" {
		t.Errorf("url = %q", l.URL)
	}
}
