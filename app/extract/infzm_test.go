package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestInfzm_ContentID(t *testing.T) {
	a := NewInfzm(slog.Default(), http.DefaultClient)

	tbl := []struct{ url, want string }{
		{"https://www.infzm.com/contents/123456", "123456"},
		{"https://www.infzm.com/wap/#/content/123456", "123456"},
		{"https://www.infzm.com/wap#/content/7890", "7890"},
		{"https://www.infzm.com/contents/123456?from=timeline", "123456"},
		{"https://example.com/contents/123456", ""},
		{"https://www.infzm.com/about", ""},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, a.contentID(tt.url), "url %q", tt.url)
		assert.Equal(t, tt.want != "", a.Match(tt.url), "url %q", tt.url)
	}
}

func TestInfzm_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mobile/contents/123456", r.URL.Path)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"data":{"content":{
			"subject":"南周报道标题",
			"author":"南方周末记者",
			"publish_time":"2023-05-07 10:00:00",
			"fulltext":"<p>报道第一段。</p><p>报道第二段。</p>",
			"word_count":10,
			"pay_property":{"mode":"free"}
		}}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	a := &Infzm{log: slog.Default(), cl: ts.Client(), baseURL: ts.URL}

	res, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/123456")
	require.True(t, ok)

	assert.Equal(t, "报道第一段。\n报道第二段。", res.Text)
	assert.Equal(t, "南周报道标题", res.Title)
	assert.Equal(t, "南方周末", res.SourceName)
	assert.Equal(t, "南方周末记者", res.Author)
	assert.Equal(t, "2023-05-07", res.PubDate)
}

func TestInfzm_FetchPaywalled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`{"data":{"content":{
			"subject":"付费报道",
			"publish_time":"2023-05-07",
			"fulltext":"<p>只有预览的一小段。</p>",
			"word_count":5000,
			"pay_property":{"mode":"meterage"}
		}}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	a := &Infzm{log: slog.Default(), cl: ts.Client(), baseURL: ts.URL}

	res, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/1")
	require.True(t, ok)

	assert.Contains(t, res.Text, "只有预览的一小段。")
	assert.Contains(t, res.Text, "behind a paywall")
	assert.Contains(t, res.Text, "of ~5000 characters")
	assert.Equal(t, 1, strings.Count(res.Text, "[Note:"))
}

func TestInfzm_FetchFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		a := &Infzm{log: slog.Default(), cl: ts.Client(), baseURL: ts.URL}
		_, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/1")
		assert.False(t, ok)
	})

	t.Run("malformed payload", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, err := w.Write([]byte(`{"data":`))
			require.NoError(t, err)
		}))
		defer ts.Close()

		a := &Infzm{log: slog.Default(), cl: ts.Client(), baseURL: ts.URL}
		_, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/1")
		assert.False(t, ok)
	})

	t.Run("missing content object", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, err := w.Write([]byte(`{"data":{}}`))
			require.NoError(t, err)
		}))
		defer ts.Close()

		a := &Infzm{log: slog.Default(), cl: ts.Client(), baseURL: ts.URL}
		_, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/1")
		assert.False(t, ok)
	})

	t.Run("unreachable api", func(t *testing.T) {
		a := &Infzm{log: slog.Default(), cl: http.DefaultClient, baseURL: "http://127.0.0.1:1"}
		_, ok := a.Fetch(context.Background(), "https://www.infzm.com/contents/1")
		assert.False(t, ok)
	})
}
