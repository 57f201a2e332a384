package extract

import (
	"strings"
	"unicode/utf8"
)

// footerMarkers are phrases that reliably open the trailing boilerplate of
// Chinese news pages: legal disclaimers, editor bylines, app-download
// prompts and ICP registration footers. Everything from the first line
// containing one of them to the end of the document is dropped.
var footerMarkers = []string{
	"特别声明", "免责声明", "版权声明", "责任编辑",
	"原标题：", "阅读原文", "返回搜狐", "举报/反馈",
	"扫码下载", "下载客户端", "关于我们", "联系我们",
	"©", "ICP备", "ICP证", "京公网安备", "沪公网安备",
}

// Normalize removes boilerplate from raw extracted text, line by line:
// blank lines are dropped, processing stops at the first footer marker,
// and short lines without any CJK character (vote counters and similar UI
// remnants) are skipped. Normalize is idempotent.
func Normalize(raw string) string {
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if containsFooterMarker(line) {
			break
		}
		if utf8.RuneCountInString(line) <= 4 && cjkCount(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func containsFooterMarker(line string) bool {
	for _, marker := range footerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
