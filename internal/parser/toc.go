package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// TOC title forms: 目录, 目  录, 一、目录, 1. 目录 and similar.
var (
	tocTitleRe     = regexp.MustCompile(`^[\s　]*[一二三四五六七八九十\d.、．]*[\s　]*目\s*录\s*$`)
	tocNoiseRe     = regexp.MustCompile(`[\s　\d.、．一二三四五六七八九十]+`)
	dotLeaderRe    = regexp.MustCompile(`\.{2,}`)
	underscoreRe   = regexp.MustCompile(`_{2,}`)
	trailingPageRe = regexp.MustCompile(`(\d+)\s*$`)
	entryTrailerRe = regexp.MustCompile(`[\s\t._]+\d+$`)
)

// tocScanWindow bounds how far past the marker entries are recognized.
const tocScanWindow = 100

// parseTOC locates the table-of-contents marker paragraph and extracts the
// entries that follow it.
func parseTOC(paras []docmodel.Paragraph) docmodel.TOC {
	toc := docmodel.TOC{Entries: []docmodel.TOCEntry{}}

	start := -1
	for i := range paras {
		text := strings.TrimSpace(paras[i].Text)
		if text == "" {
			continue
		}
		if tocTitleRe.MatchString(text) {
			start = i
			break
		}
		// A short line containing the marker with only numbering noise
		// around it also counts.
		if strings.Contains(text, "目录") && utf8.RuneCountInString(text) <= 10 {
			if tocNoiseRe.ReplaceAllString(text, "") == "目录" {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return toc
	}

	toc.Exists = true
	toc.ParagraphIndex = &start
	toc.Entries = extractTOCEntries(paras, start)
	return toc
}

// extractTOCEntries recognizes entry lines by their leaders: tab characters
// or runs of dots/underscores ending in a page number.
func extractTOCEntries(paras []docmodel.Paragraph, start int) []docmodel.TOCEntry {
	entries := []docmodel.TOCEntry{}

	end := start + tocScanWindow
	if end > len(paras) {
		end = len(paras)
	}

	for idx := start + 1; idx < end; idx++ {
		p := &paras[idx]
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}

		// A substantial level-1 heading ends the TOC block.
		if styleHeadingLevel(p.StyleName) == 1 && utf8.RuneCountInString(text) > 10 {
			break
		}

		if !strings.Contains(text, "\t") && !dotLeaderRe.MatchString(text) && !underscoreRe.MatchString(text) {
			continue
		}

		title := entryTrailerRe.ReplaceAllString(text, "")
		title = strings.TrimRight(strings.TrimSpace(title), ".\t_")
		if title == "" {
			continue
		}

		var page *int
		if m := trailingPageRe.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				page = &n
			}
		}

		level := 1
		switch {
		case strings.HasPrefix(p.Text, "\t\t"):
			level = 3
		case strings.HasPrefix(p.Text, "\t"):
			level = 2
		}
		if styled := styleHeadingLevel(p.StyleName); styled > 0 {
			level = styled
		}

		entries = append(entries, docmodel.TOCEntry{
			Title:          title,
			Level:          level,
			Page:           page,
			ParagraphIndex: idx,
			OriginalText:   text,
		})
	}

	return entries
}
