// Package score ranks listings against the keyword that produced them.
// The score is a transparent keyword-match heuristic rather than a trained
// model, so a surprising score can always be traced to its inputs.
package score

import (
	"strings"

	"jobradar/internal/model"
)

// Weights for the individual signals. Title/company matches dominate;
// description matches only nudge.
const (
	wholeKeyword = 40.0
	keywordToken = 5.0
	tagInTitle   = 10.0
	tagInBody    = 3.0
)

// Relevance scores a listing against the keyword that produced it, 0-100.
// Deterministic for identical inputs.
func Relevance(l model.Listing, keyword string, tags []string) float64 {
	haystack := strings.ToLower(l.Title + " " + l.Company)
	body := strings.ToLower(l.Description)
	kw := strings.ToLower(keyword)

	var s float64

	if kw != "" && strings.Contains(haystack, kw) {
		s += wholeKeyword
	}

	// Token matches are additive on top of the whole-keyword hit.
	for _, word := range strings.Fields(kw) {
		if strings.Contains(haystack, word) {
			s += keywordToken
		}
	}

	// Tags are evaluated independently of the keyword, every time.
	for _, tag := range tags {
		t := strings.ToLower(tag)
		switch {
		case strings.Contains(haystack, t):
			s += tagInTitle
		case strings.Contains(body, t):
			s += tagInBody
		}
	}

	if s > 100 {
		s = 100
	}
	if s < 0 {
		s = 0
	}
	return s
}
