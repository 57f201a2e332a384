package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// structuralTags never hold article prose and are removed outright.
var structuralTags = []string{
	"nav", "header", "footer", "aside", "noscript", "iframe", "svg", "form", "button",
}

// boilerplateRoles are ARIA landmark roles marking page chrome.
var boilerplateRoles = map[string]struct{}{
	"navigation":    {},
	"banner":        {},
	"complementary": {},
	"contentinfo":   {},
}

// boilerplateTokens are class/id names that mark non-article chrome.
// Matching is exact per token, not substring, so "advert" in
// "advertorial-story" does not nuke a legitimate container.
var boilerplateTokens = map[string]struct{}{
	"nav": {}, "navbar": {}, "menu": {}, "sidebar": {}, "footer": {},
	"header": {}, "banner": {}, "breadcrumb": {}, "comments": {},
	"share": {}, "social": {}, "related": {}, "recommend": {},
	"ad": {}, "ads": {}, "advertisement": {}, "app-download": {},
	"copyright": {}, "disclaimer": {}, "legal": {}, "privacy": {},
	"feedback": {}, "login": {}, "signup": {},
}

// containerSelectors are class/id names used by common Chinese CMSs for
// the article body, tried in order after the semantic <article> tag.
var containerSelectors = []string{
	".article-content", ".article_content",
	".news_txt", ".news-content",
	".post_body", ".post_text",
	"#artibody", "#article",
}

// hashedContentClassRe matches CSS-module style wrapper classes like
// "centetWrap__2LWk1" ("centet" is a typo some outlets actually ship).
var hashedContentClassRe = regexp.MustCompile(
	`(?i)(?:content|article|news.?(?:txt|body|detail)|centet|text.?wrap|post.?body).*__`)

const (
	// minimum CJK characters for a div to qualify as a density candidate
	densityMinCJK = 100
	// candidates below this share of the maximum CJK count are discarded
	densityKeepRatio = 0.6
)

// domText is the extractor of last resort: it prunes boilerplate regions
// from the tree, locates the likely article container and serializes it to
// text. It always produces some text for a non-empty document, worst case
// the whole page, trusting the normalizer to absorb residual chrome.
// The passes mutate the document, so it must run after every other
// strategy has had its look.
func domText(doc *goquery.Document) string {
	removeBoilerplate(doc)

	if container := findContainer(doc); container != nil {
		return nodeText(container)
	}
	if root := doc.Selection.Nodes; len(root) > 0 {
		return nodeText(root[0])
	}
	return ""
}

func removeBoilerplate(doc *goquery.Document) {
	doc.Find(strings.Join(structuralTags, ", ")).Remove()

	// collect matches before removing: detaching nodes mid-traversal
	// skips their siblings
	var doomed []*goquery.Selection

	doc.Find("[role]").Each(func(_ int, s *goquery.Selection) {
		if _, ok := boilerplateRoles[s.AttrOr("role", "")]; ok {
			doomed = append(doomed, s)
		}
	})

	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		for _, token := range strings.Fields(s.AttrOr("class", "")) {
			if _, ok := boilerplateTokens[strings.ToLower(token)]; ok {
				doomed = append(doomed, s)
				return
			}
		}
	})

	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if _, ok := boilerplateTokens[strings.ToLower(s.AttrOr("id", ""))]; ok {
			doomed = append(doomed, s)
		}
	})

	for _, s := range doomed {
		s.Remove()
	}
}

// findContainer locates the article container: semantic tag, known CMS
// selectors, hashed content-wrapper classes, then CJK-density fallback.
func findContainer(doc *goquery.Document) *html.Node {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article.Nodes[0]
	}

	for _, sel := range containerSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Nodes[0]
		}
	}

	var hashed *html.Node
	doc.Find("div[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hashedContentClassRe.MatchString(s.AttrOr("class", "")) {
			hashed = s.Nodes[0]
			return false
		}
		return true
	})
	if hashed != nil {
		return hashed
	}

	return densestDiv(doc)
}

// densestDiv picks, among divs with substantial Chinese text, the tightest
// container: candidates within 60% of the maximum CJK count are kept and
// the one with the smallest total text length wins. A broad wrapper that
// merely encloses many relevant descendants loses to the narrow div that
// actually holds the prose.
func densestDiv(doc *goquery.Document) *html.Node {
	type candidate struct {
		node   *html.Node
		cjk    int
		length int
	}

	var candidates []candidate
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		txt := flatText(s.Nodes[0])
		if cjk := cjkCount(txt); cjk > densityMinCJK {
			candidates = append(candidates, candidate{
				node:   s.Nodes[0],
				cjk:    cjk,
				length: utf8.RuneCountInString(txt),
			})
		}
	})
	if len(candidates) == 0 {
		return nil
	}

	maxCJK := 0
	for _, c := range candidates {
		if c.cjk > maxCJK {
			maxCJK = c.cjk
		}
	}
	threshold := float64(maxCJK) * densityKeepRatio

	best := candidate{length: -1}
	for _, c := range candidates {
		if float64(c.cjk) < threshold {
			continue
		}
		if best.length < 0 || c.length < best.length {
			best = c
		}
	}
	return best.node
}
