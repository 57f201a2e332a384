package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// leadingDateRe matches a YYYY-M-D or YYYY/M/D token at the start of a
// publish-time string like "2023/5/7 10:00".
var leadingDateRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)

// inlineContentRe grabs the widest JSON object literal mentioning a
// content-detail key inside an inline script.
var inlineContentRe = regexp.MustCompile(`(?s)\{.*"content(?:Detail|_detail)".*\}`)

// genericArticleKeys are page-props keys commonly holding the article
// object on Next.js sites that do not follow the contentDetail schema.
var genericArticleKeys = []string{"article", "post", "news", "detail", "data"}

// extractStructured mines embedded JSON payloads: the __NEXT_DATA__
// hydration block first, then any inline script carrying a content-detail
// object. Decode errors and missing keys yield no result, never an error.
func extractStructured(doc *goquery.Document) (Result, bool) {
	if script := doc.Find("script#__NEXT_DATA__").First(); script.Length() > 0 {
		var data map[string]any
		if err := json.Unmarshal([]byte(script.Text()), &data); err == nil {
			if res, ok := extractNextData(data); ok {
				return res, true
			}
		}
	}

	return extractInlineScripts(doc)
}

// extractNextData walks the hydration payload for the contentDetail schema
// used by thepaper.cn and friends, then for generic article keys.
func extractNextData(data map[string]any) (Result, bool) {
	props := childObject(childObject(data, "props"), "pageProps")

	if detail := childObject(childObject(props, "detailData"), "contentDetail"); len(detail) > 0 {
		title := stringValue(detail, "name")
		author := strings.TrimSpace(stringValue(detail, "author"))
		source := strings.TrimSpace(stringValue(detail, "source"))

		pubTime := stringValue(detail, "pubTimeLong")
		if pubTime == "" {
			pubTime = stringValue(detail, "pubTime")
		}
		pubTime = strings.TrimSpace(pubTime)

		body := stripTags(stringValue(detail, "content"))

		// body preceded by the title and an "author | source | time" line
		var parts []string
		if title != "" {
			parts = append(parts, title)
		}
		var metaFields []string
		for _, f := range []string{author, source, pubTime} {
			if f != "" {
				metaFields = append(metaFields, f)
			}
		}
		if len(metaFields) > 0 {
			parts = append(parts, strings.Join(metaFields, " | "))
		}
		if body != "" {
			parts = append(parts, body)
		}

		return Result{
			Text:       strings.Join(parts, "\n"),
			Title:      title,
			SourceName: source,
			Author:     author,
			PubDate:    normalizeDate(pubTime),
		}, true
	}

	for _, key := range genericArticleKeys {
		obj := childObject(props, key)
		if len(obj) == 0 {
			continue
		}
		content := stringValue(obj, "content")
		if content == "" {
			content = stringValue(obj, "body")
		}
		if content == "" {
			content = stringValue(obj, "text")
		}
		if utf8.RuneCountInString(content) <= 50 {
			continue
		}

		title := stringValue(obj, "title")
		body := stripTags(content)
		text := body
		if title != "" {
			text = title + "\n" + body
		}

		pubDate := stringValue(obj, "publishTime")
		if pubDate == "" {
			pubDate = stringValue(obj, "pubDate")
		}

		return Result{
			Text:       text,
			Title:      title,
			SourceName: stringValue(obj, "source"),
			Author:     stringValue(obj, "author"),
			PubDate:    firstN(pubDate, 10),
		}, true
	}

	return Result{}, false
}

// extractInlineScripts scans every inline script for a JSON object literal
// with a content-detail body. Only text is recovered on this path, the
// blob's shape is too loose to trust any metadata.
func extractInlineScripts(doc *goquery.Document) (res Result, ok bool) {
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		txt := s.Text()
		if !strings.Contains(txt, "contentDetail") && !strings.Contains(txt, "articleBody") {
			return true
		}

		m := inlineContentRe.FindString(txt)
		if m == "" {
			return true
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(m), &data); err != nil {
			return true
		}

		body := stringValue(childObject(data, "contentDetail"), "content")
		if body == "" {
			body = stringValue(childObject(data, "content_detail"), "content")
		}
		if body == "" {
			return true
		}

		res, ok = Result{Text: Normalize(stripTags(body))}, true
		return false
	})

	return res, ok
}

// normalizeDate rewrites a leading YYYY-M-D or YYYY/M/D token of a
// publish-time string to zero-padded YYYY-MM-DD; anything else yields "".
func normalizeDate(pubTime string) string {
	m := leadingDateRe.FindStringSubmatch(strings.TrimSpace(pubTime))
	if m == nil {
		return ""
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// childObject returns m[key] when it is a JSON object, nil otherwise.
func childObject(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	obj, _ := m[key].(map[string]any)
	return obj
}

// stringValue renders m[key] as a string; numeric epoch-style values are
// stringified the way they appear in the payload.
func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
