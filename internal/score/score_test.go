package score

import (
	"fmt"
	"testing"

	"jobradar/internal/model"
)

func listing(title, company, desc string) model.Listing {
	return model.Listing{Title: title, Company: company, Description: desc}
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name    string
		l       model.Listing
		keyword string
		tags    []string
		want    float64
	}{
		{
			// 40 whole keyword + 5 single token
			name:    "whole keyword plus token",
			l:       listing("Backend Engineer", "Acme", ""),
			keyword: "Engineer",
			want:    45,
		},
		{
			// Both tokens match but the whole string does not.
			name:    "tokens only",
			l:       listing("Senior Engineer (Backend)", "Acme", ""),
			keyword: "backend engineer",
			want:    10,
		},
		{
			name:    "no match",
			l:       listing("Accountant", "Acme", ""),
			keyword: "engineer",
			want:    0,
		},
		{
			name:    "tag in title",
			l:       listing("Golang Developer", "Acme", ""),
			keyword: "rust",
			tags:    []string{"golang"},
			want:    10,
		},
		{
			name:    "tag in description only",
			l:       listing("Developer", "Acme", "We use Golang and Kubernetes."),
			keyword: "rust",
			tags:    []string{"golang"},
			want:    3,
		},
		{
			// Title match wins over description match for the same tag.
			name:    "tag in both counts once",
			l:       listing("Golang Developer", "Acme", "More golang here"),
			keyword: "rust",
			tags:    []string{"golang"},
			want:    10,
		},
		{
			name:    "case insensitive",
			l:       listing("BACKEND ENGINEER", "ACME", ""),
			keyword: "backend engineer",
			want:    50,
		},
		{
			name:    "empty keyword scores only tags",
			l:       listing("Backend Engineer", "Acme", ""),
			keyword: "",
			tags:    []string{"backend"},
			want:    10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Relevance(tt.l, tt.keyword, tt.tags)
			if got != tt.want {
				t.Errorf("Relevance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelevance_ClampedTo100(t *testing.T) {
	// Enough tags to blow past 100 without the clamp.
	var tags []string
	for i := 0; i < 20; i++ {
		tags = append(tags, "engineer")
	}
	l := listing("Backend Engineer", "Acme", "")
	got := Relevance(l, "backend engineer", tags)
	if got != 100 {
		t.Errorf("Relevance = %v, want clamp at 100", got)
	}
}

func TestRelevance_BoundsForAllInputs(t *testing.T) {
	listings := []model.Listing{
		{},
		listing("Backend Engineer", "Acme", "golang golang golang"),
		listing("x", "y", "z"),
	}
	keywords := []string{"", "engineer", "backend engineer golang remote senior"}
	tagSets := [][]string{nil, {"golang", "remote", "backend", "engineer", "acme"}}

	for _, l := range listings {
		for _, kw := range keywords {
			for _, tags := range tagSets {
				got := Relevance(l, kw, tags)
				if got < 0 || got > 100 {
					t.Errorf("Relevance(%v, %q, %v) = %v out of [0,100]", l, kw, tags, got)
				}
			}
		}
	}
}

func TestRelevance_Deterministic(t *testing.T) {
	l := listing("Backend Engineer", "Acme", "golang shop")
	tags := []string{"golang", "remote"}
	first := Relevance(l, "backend engineer", tags)
	for i := 0; i < 10; i++ {
		if got := Relevance(l, "backend engineer", tags); got != first {
			t.Fatalf("run %d: Relevance = %v, want stable %v", i, got, first)
		}
	}
}

func ExampleRelevance() {
	l := model.Listing{Title: "Backend Engineer", Company: "Acme", URL: "https://x/1"}
	fmt.Println(Relevance(l, "Engineer", nil))
	// Output: 45
}
