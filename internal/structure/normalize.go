package structure

import (
	"regexp"
	"strings"
)

// Ordinal prefixes and decoration stripped before titles are compared, so
// "第一章 绪论", "1. 绪论" and "绪论" all normalize to the same key.
var (
	chapterPrefixRe   = regexp.MustCompile(`^第[一二三四五六七八九十百\d]+[章节部分篇]\s*`)
	enumeratorRe      = regexp.MustCompile(`^[一二三四五六七八九十]+[、.．]\s*`)
	numberPrefixRe    = regexp.MustCompile(`^\d+(\.\d+)*[、.．]?\s*`)
	parenEnumeratorRe = regexp.MustCompile(`^[(（][一二三四五六七八九十\d]+[)）]\s*`)
	punctAndSpaceRe   = regexp.MustCompile(`[\s　、，。：:.．,;；!！?？"'"'（）()\[\]【】-]+`)
)

// NormalizeTitle reduces a heading or TOC title to a comparison key:
// ordinal prefixes removed, then all whitespace and punctuation dropped.
func NormalizeTitle(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}
	s = chapterPrefixRe.ReplaceAllString(s, "")
	s = parenEnumeratorRe.ReplaceAllString(s, "")
	s = enumeratorRe.ReplaceAllString(s, "")
	s = numberPrefixRe.ReplaceAllString(s, "")
	s = punctAndSpaceRe.ReplaceAllString(s, "")
	return s
}

func containsSub(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
