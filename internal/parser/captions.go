package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// Caption-number patterns: 表1, 表1-1, 表1.1 and the figure equivalents,
// with full-width separators tolerated.
var (
	tableCaptionRe  = regexp.MustCompile(`^表\s*\d+([－\-.．]\d+)*\s+`)
	figureCaptionRe = regexp.MustCompile(`^图\s*\d+([－\-.．]\d+)*\s+`)
)

// captionOffsets is the scan order around an anchor paragraph: two before,
// then one after. First match wins.
var captionOffsets = [4]int{-2, -1, 1, 2}

// findCaption scans ±2 paragraphs around anchor for a caption line.
func findCaption(paras []docmodel.Paragraph, anchor int, re *regexp.Regexp) (string, *int) {
	for _, off := range captionOffsets {
		idx := anchor + off
		if idx < 0 || idx >= len(paras) {
			continue
		}
		text := strings.TrimSpace(paras[idx].Text)
		if re.MatchString(text) {
			i := idx
			return text, &i
		}
	}
	return "", nil
}

func parseTables(anchors []int, paras []docmodel.Paragraph) []docmodel.Table {
	var tables []docmodel.Table
	for i, anchor := range anchors {
		t := docmodel.Table{
			Index:           i,
			CaptionPosition: "above",
			ParagraphIndex:  anchor,
		}
		t.Caption, t.CaptionParagraphIndex = findCaption(paras, anchor, tableCaptionRe)
		tables = append(tables, t)
	}
	return tables
}

func parseFigures(drawingParas []int, paras []docmodel.Paragraph) []docmodel.Figure {
	var figures []docmodel.Figure
	for i, anchor := range drawingParas {
		f := docmodel.Figure{
			Index:           i,
			CaptionPosition: "below",
			ParagraphIndex:  anchor,
		}
		f.Caption, f.CaptionParagraphIndex = findCaption(paras, anchor, figureCaptionRe)
		figures = append(figures, f)
	}
	return figures
}
