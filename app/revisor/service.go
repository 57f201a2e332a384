package revisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Semior001/zhbrief/app/extract"
	"github.com/Semior001/zhbrief/app/store"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/net/html/charset"
)

// ErrNoContent is returned when neither the URL nor the pasted text
// produced any article text to work with.
var ErrNoContent = errors.New("no text content found")

// Service is a main application service.
type Service struct {
	log       *slog.Logger
	cl        *http.Client
	deepSeek  *DeepSeek
	extractor *extract.Service
}

// NewService creates new service.
func NewService(lg *slog.Logger, cl *http.Client, deepSeek *DeepSeek, extractor *extract.Service) *Service {
	return &Service{
		log:       lg,
		cl:        cl,
		deepSeek:  deepSeek,
		extractor: extractor,
	}
}

// LLMCacheStat returns cache stats.
func (s *Service) LLMCacheStat() cache.Stats { return s.deepSeek.CacheStat() }

// Request is the input of a single processing call: either a URL to fetch
// and extract, or already obtained Chinese text.
type Request struct {
	URL  string
	Text string
}

// Process extracts the article, translates it to English and produces an
// executive summary. The returned entry is not persisted, that is up to
// the caller.
func (s *Service) Process(ctx context.Context, req Request) (store.Entry, error) {
	chinese := strings.TrimSpace(req.Text)

	var article extract.Result
	if req.URL != "" {
		s.log.DebugCtx(ctx, "aggregating article from", slog.String("url", req.URL))

		var err error
		if article, err = s.fetchArticle(ctx, req.URL); err != nil {
			return store.Entry{}, fmt.Errorf("fetch article: %w", err)
		}
		chinese = article.Text
	}

	if chinese == "" {
		return store.Entry{}, ErrNoContent
	}

	english, err := s.deepSeek.Translate(ctx, chinese)
	if err != nil {
		return store.Entry{}, fmt.Errorf("translate article: %w", err)
	}

	summary, err := s.deepSeek.Summarize(ctx, english)
	if err != nil {
		return store.Entry{}, fmt.Errorf("summarize article: %w", err)
	}

	return store.Entry{
		ID:          uuid.New().String(),
		URL:         req.URL,
		Title:       article.Title,
		SourceName:  article.SourceName,
		Author:      article.Author,
		PubDate:     article.PubDate,
		ChineseText: chinese,
		EnglishText: english,
		Summary:     summary,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// fetchArticle downloads the page and runs the extraction cascade over it.
func (s *Service) fetchArticle(ctx context.Context, u string) (extract.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return extract.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", extract.UserAgent)

	resp, err := s.cl.Do(req)
	if err != nil {
		return extract.Result{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return extract.Result{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	// many Chinese outlets still serve GBK or GB2312
	rd, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return extract.Result{}, fmt.Errorf("detect charset: %w", err)
	}

	result, err := s.extractor.Extract(ctx, u, rd)
	if err != nil {
		return extract.Result{}, fmt.Errorf("extract article: %w", err)
	}

	return result, nil
}
