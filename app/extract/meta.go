package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Meta is page metadata read from standard document tags, independent of
// body extraction. Absent fields stay empty, they are never inferred.
type Meta struct {
	Title      string
	SourceName string
	Author     string
	PubDate    string
}

// titleSeparators are the characters outlets use to glue their name to the
// page title, e.g. "某公司被调查 - 新浪网" or "标题_腾讯新闻".
const titleSeparators = "_-|–—"

// ReadMeta reads title, outlet name, author and publication date from meta
// tags, each via its own fallback chain.
func ReadMeta(doc *goquery.Document) Meta {
	m := Meta{}

	if t := metaContent(doc, "meta[property='og:title']"); t != "" {
		m.Title = t
	} else if raw := strings.TrimSpace(doc.Find("title").First().Text()); raw != "" {
		m.Title = stripTitleSuffix(raw)
	}

	m.SourceName = firstMetaContent(doc,
		"meta[property='og:site_name']",
		"meta[name='source']",
		"meta[name='publisher']",
	)

	m.Author = firstMetaContent(doc,
		"meta[name='author']",
		"meta[property='article:author']",
	)

	date := firstMetaContent(doc,
		"meta[property='article:published_time']",
		"meta[property='og:article:published_time']",
		"meta[name='publishdate']",
		"meta[name='publish_date']",
		"meta[name='date']",
		"meta[name='PubDate']",
	)
	m.PubDate = firstN(date, 10)

	return m
}

// stripTitleSuffix cuts the outlet-name segment after the last separator,
// keeping the prefix. Titles that are nothing but a suffix collapse to "".
func stripTitleSuffix(title string) string {
	if i := strings.LastIndexAny(title, titleSeparators); i >= 0 {
		return strings.TrimSpace(title[:i])
	}
	return title
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content := metaContent(doc, sel); content != "" {
			return content
		}
	}
	return ""
}
