package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructured_ContentDetail(t *testing.T) {
	doc := parseDoc(t, `<html><head><script id="__NEXT_DATA__" type="application/json">
	{"props":{"pageProps":{"detailData":{"contentDetail":{
		"name":"调查报道标题",
		"author":" 李记者 ",
		"source":" 澎湃新闻 ",
		"pubTime":"2023/5/7 10:00",
		"content":"<p>第一段正文。</p><p>第二段正文。</p>"
	}}}}}
	</script></head><body></body></html>`)

	res, ok := extractStructured(doc)
	require.True(t, ok)

	assert.Equal(t, "调查报道标题\n李记者 | 澎湃新闻 | 2023/5/7 10:00\n第一段正文。\n第二段正文。", res.Text)
	assert.Equal(t, "调查报道标题", res.Title)
	assert.Equal(t, "澎湃新闻", res.SourceName)
	assert.Equal(t, "李记者", res.Author)
	assert.Equal(t, "2023-05-07", res.PubDate)
}

func TestExtractStructured_GenericKey(t *testing.T) {
	doc := parseDoc(t, `<html><head><script id="__NEXT_DATA__" type="application/json">
	{"props":{"pageProps":{"article":{
		"title":"通用结构标题",
		"body":"<p>这是一段超过五十个字符的正文内容，用来满足通用提取路径的最小长度要求，再补充一些文字凑够长度限制。</p>",
		"author":"王作者",
		"source":"新华网",
		"publishTime":"2024-03-15T08:00:00"
	}}}}
	</script></head><body></body></html>`)

	res, ok := extractStructured(doc)
	require.True(t, ok)

	assert.Equal(t, "通用结构标题", res.Title)
	assert.Equal(t, "新华网", res.SourceName)
	assert.Equal(t, "王作者", res.Author)
	assert.Equal(t, "2024-03-15", res.PubDate)
	assert.Contains(t, res.Text, "通用结构标题\n这是一段超过五十个字符的正文内容")
}

func TestExtractStructured_GenericKeyTooShort(t *testing.T) {
	doc := parseDoc(t, `<html><head><script id="__NEXT_DATA__" type="application/json">
	{"props":{"pageProps":{"article":{"title":"短","content":"太短"}}}}
	</script></head><body></body></html>`)

	_, ok := extractStructured(doc)
	assert.False(t, ok)
}

func TestExtractStructured_InlineScriptFallback(t *testing.T) {
	doc := parseDoc(t, `<html><head>
	<script>window.__DATA__ = {"contentDetail":{"content":"<p>内嵌脚本里的正文内容。</p>"}};</script>
	</head><body></body></html>`)

	res, ok := extractStructured(doc)
	require.True(t, ok)

	assert.Equal(t, "内嵌脚本里的正文内容。", res.Text)
	// this path recovers text only
	assert.Empty(t, res.Title)
	assert.Empty(t, res.SourceName)
	assert.Empty(t, res.PubDate)
}

func TestExtractStructured_MalformedJSON(t *testing.T) {
	doc := parseDoc(t, `<html><head>
	<script id="__NEXT_DATA__" type="application/json">{not json at all</script>
	</head><body></body></html>`)

	_, ok := extractStructured(doc)
	assert.False(t, ok)
}

func TestExtractStructured_NoPayload(t *testing.T) {
	_, ok := extractStructured(parseDoc(t, `<html><body><p>plain page</p></body></html>`))
	assert.False(t, ok)
}

func TestNormalizeDate(t *testing.T) {
	tbl := []struct{ in, want string }{
		{"2023/5/7 10:00", "2023-05-07"},
		{"2023-5-7", "2023-05-07"},
		{"2023-12-31 23:59", "2023-12-31"},
		{"昨天 10:00", ""},
		{"", ""},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, normalizeDate(tt.in), "pub time %q", tt.in)
	}
}
