package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/exp/slog"
)

// UserAgent is a fixed desktop browser identity used for outbound requests;
// several outlets serve stripped-down or blocked pages to unknown agents.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// infzm.com serves articles both as an SPA (/wap/#/content/123) and
// server-rendered (/contents/123); the first matching pattern wins.
var infzmIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`infzm\.com/wap/?#/content/(\d+)`),
	regexp.MustCompile(`infzm\.com/contents/(\d+)`),
}

// Infzm fetches articles of Southern Weekly (南方周末) from its mobile
// content API, bypassing generic HTML extraction.
type Infzm struct {
	log     *slog.Logger
	cl      *http.Client
	baseURL string
}

// NewInfzm creates the infzm.com adapter.
func NewInfzm(lg *slog.Logger, cl *http.Client) *Infzm {
	return &Infzm{log: lg, cl: cl, baseURL: "https://api.infzm.com"}
}

// Match reports whether the URL carries an infzm content id.
func (a *Infzm) Match(u string) bool { return a.contentID(u) != "" }

// contentID extracts the numeric content id from either URL form.
func (a *Infzm) contentID(u string) string {
	for _, re := range infzmIDPatterns {
		if m := re.FindStringSubmatch(u); m != nil {
			return m[1]
		}
	}
	return ""
}

// infzmEnvelope is the relevant part of the mobile API response.
type infzmEnvelope struct {
	Data struct {
		Content struct {
			Subject     string `json:"subject"`
			Author      string `json:"author"`
			PublishTime string `json:"publish_time"`
			Fulltext    string `json:"fulltext"`
			WordCount   int    `json:"word_count"`
			PayProperty struct {
				Mode string `json:"mode"`
			} `json:"pay_property"`
		} `json:"content"`
	} `json:"data"`
}

// Fetch requests the article from the content API. Any network error,
// non-200 status or malformed payload yields no result, never an error;
// the orchestrator then falls through to the generic strategies.
func (a *Infzm) Fetch(ctx context.Context, u string) (Result, bool) {
	id := a.contentID(u)
	if id == "" {
		return Result{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/mobile/contents/%s", a.baseURL, id), http.NoBody)
	if err != nil {
		a.log.DebugCtx(ctx, "build infzm request", slog.Any("err", err))
		return Result{}, false
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.cl.Do(req)
	if err != nil {
		a.log.DebugCtx(ctx, "infzm api request failed", slog.Any("err", err))
		return Result{}, false
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		a.log.DebugCtx(ctx, "infzm api bad status", slog.Int("status", resp.StatusCode))
		return Result{}, false
	}

	var envelope infzmEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		a.log.DebugCtx(ctx, "decode infzm response", slog.Any("err", err))
		return Result{}, false
	}

	c := envelope.Data.Content
	if c.Fulltext == "" && c.Subject == "" {
		return Result{}, false
	}

	text := ""
	if c.Fulltext != "" {
		text = stripTags(c.Fulltext)
	}

	// metered articles come back truncated; annotate instead of failing
	isPaid := c.PayProperty.Mode == "meterage" || c.PayProperty.Mode == "pay"
	if got := utf8.RuneCountInString(text); isPaid && c.WordCount > 0 && got*2 < c.WordCount {
		text += fmt.Sprintf("\n\n[Note: This article is behind a paywall. "+
			"Only a preview (~%d of ~%d characters) is available.]", got, c.WordCount)
	}

	return Result{
		Text:       text,
		Title:      c.Subject,
		SourceName: "南方周末",
		Author:     c.Author,
		PubDate:    firstN(c.PublishTime, 10),
	}, true
}

// firstN returns the first n runes of s.
func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
