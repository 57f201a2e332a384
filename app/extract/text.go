package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// nodeText serializes the subtree to text, one trimmed chunk per text node,
// joined with line breaks. Script and style bodies are skipped.
func nodeText(n *html.Node) string {
	var chunks []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				chunks = append(chunks, t)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(chunks, "\n")
}

// flatText is nodeText without separators, used for length measurements.
func flatText(n *html.Node) string {
	return strings.ReplaceAll(nodeText(n), "\n", "")
}

// stripTags parses an HTML fragment and returns its text with line breaks
// preserved between blocks. Returns "" on a malformed fragment.
func stripTags(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return nodeText(root)
}

// cjkCount returns the number of CJK Unified Ideographs in s.
func cjkCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			n++
		}
	}
	return n
}
