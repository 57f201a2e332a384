// Package extract pulls the main readable text and metadata of a news
// article out of a fetched page, via a cascade of strategies: site-specific
// API adapters, embedded-JSON payloads and DOM heuristics.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/exp/slog"
)

// Result is the outcome of a single extraction. A result is usable iff
// Text is non-empty; all other fields are best-effort and may be empty.
type Result struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	Author     string `json:"author"`
	PubDate    string `json:"pub_date"` // YYYY-MM-DD when derivable
}

// Usable reports whether the result carries any article text.
func (r Result) Usable() bool { return r.Text != "" }

// SiteAdapter bypasses generic extraction for a known outlet by calling
// its dedicated content API. Match reports whether the adapter recognizes
// the URL; Fetch returns false when the adapter cannot produce a result,
// it never returns an error.
type SiteAdapter interface {
	Match(u string) bool
	Fetch(ctx context.Context, u string) (Result, bool)
}

// strategyFunc extracts an article from an already parsed document.
// It returns false when the strategy yields nothing; it never fails.
type strategyFunc func(doc *goquery.Document) (Result, bool)

// Service runs the extraction strategies in priority order and returns
// the first usable result.
type Service struct {
	log        *slog.Logger
	adapters   []SiteAdapter
	strategies []strategyFunc
}

// NewService creates the extraction service with the default strategy
// order: site adapters, embedded JSON, DOM heuristics.
func NewService(lg *slog.Logger, cl *http.Client) *Service {
	s := &Service{
		log:      lg,
		adapters: []SiteAdapter{NewInfzm(lg, cl)},
	}
	s.strategies = []strategyFunc{extractStructured, s.extractDOM}
	return s
}

// Extract parses the fetched document and returns the first usable result
// from the strategy cascade. Strategy failures are absorbed; the only
// returned error is a document that cannot be parsed at all. On total
// failure the result is empty, deciding what to tell the user is up to
// the caller.
func (s *Service) Extract(ctx context.Context, u string, rd io.Reader) (Result, error) {
	for _, a := range s.adapters {
		if !a.Match(u) {
			continue
		}
		if res, ok := a.Fetch(ctx, u); ok {
			if res.Text = Normalize(res.Text); res.Usable() {
				return res, nil
			}
		}
		s.log.DebugCtx(ctx, "site adapter yielded no result", slog.String("url", u))
		break // only the first matching adapter is consulted
	}

	doc, err := goquery.NewDocumentFromReader(rd)
	if err != nil {
		return Result{}, fmt.Errorf("parse document: %w", err)
	}

	for _, strategy := range s.strategies {
		res, ok := strategy(doc)
		if !ok {
			continue
		}
		if res.Text = Normalize(res.Text); res.Usable() {
			return res, nil
		}
	}

	return Result{}, nil
}

// extractDOM is the strategy of last resort: heuristic container search
// over the document tree, with page metadata merged in from meta tags.
func (s *Service) extractDOM(doc *goquery.Document) (Result, bool) {
	meta := ReadMeta(doc)

	res := Result{
		Text:       domText(doc),
		Title:      meta.Title,
		SourceName: meta.SourceName,
		Author:     meta.Author,
		PubDate:    meta.PubDate,
	}
	return res, true
}
