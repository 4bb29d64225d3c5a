package parser

import (
	"testing"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

func parasFromText(texts ...string) []docmodel.Paragraph {
	paras := make([]docmodel.Paragraph, len(texts))
	for i, text := range texts {
		paras[i] = docmodel.Paragraph{Index: i, Text: text, StyleName: "Normal"}
	}
	return paras
}

func TestParseTOC_MarkerForms(t *testing.T) {
	cases := []struct {
		name   string
		marker string
	}{
		{"plain", "目录"},
		{"spaced", "目  录"},
		{"enumerated", "一、目录"},
		{"numbered", "1. 目录"},
	}
	for _, tc := range cases {
		paras := parasFromText("封面", tc.marker, "第一章 概述......3")
		toc := parseTOC(paras)
		if !toc.Exists {
			t.Errorf("%s: marker %q not detected", tc.name, tc.marker)
			continue
		}
		if toc.ParagraphIndex == nil || *toc.ParagraphIndex != 1 {
			t.Errorf("%s: marker index = %v, want 1", tc.name, toc.ParagraphIndex)
		}
	}
}

func TestParseTOC_Absent(t *testing.T) {
	toc := parseTOC(parasFromText("封面", "第一章 概述", "正文"))
	if toc.Exists {
		t.Fatal("TOC detected in a document without one")
	}
	if toc.Entries == nil || len(toc.Entries) != 0 {
		t.Errorf("entries = %v, want empty non-nil", toc.Entries)
	}
}

func TestParseTOC_LongLineMentioningMarkerIgnored(t *testing.T) {
	toc := parseTOC(parasFromText("本章介绍了文档目录结构的生成方法和相关工具。"))
	if toc.Exists {
		t.Fatal("prose mentioning the marker word treated as TOC")
	}
}

func TestExtractTOCEntries(t *testing.T) {
	paras := parasFromText(
		"目录",
		"第一章 概述..........3",
		"",
		"\t1.1 研究背景.......4",
		"\t\t1.1.1 国内现状....5",
		"附录 A________12",
		"这一行没有前导符所以不是条目",
	)

	entries := extractTOCEntries(paras, 0)

	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4: %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Title != "第一章 概述" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Page == nil || *first.Page != 3 {
		t.Errorf("page = %v, want 3", first.Page)
	}
	if first.Level != 1 {
		t.Errorf("level = %d, want 1", first.Level)
	}
	if first.ParagraphIndex != 1 {
		t.Errorf("paragraph index = %d, want 1", first.ParagraphIndex)
	}

	if entries[1].Level != 2 || entries[1].Title != "1.1 研究背景" {
		t.Errorf("tab entry wrong: %+v", entries[1])
	}
	if entries[2].Level != 3 {
		t.Errorf("double-tab entry level = %d, want 3", entries[2].Level)
	}
	if entries[3].Title != "附录 A" || entries[3].Page == nil || *entries[3].Page != 12 {
		t.Errorf("underscore entry wrong: %+v", entries[3])
	}
}

func TestExtractTOCEntries_StyledLevelOverridesIndent(t *testing.T) {
	paras := parasFromText("目录", "\t第二章 方法.......8")
	paras[1].StyleName = "Heading1"

	entries := extractTOCEntries(paras, 0)
	if len(entries) != 1 || entries[0].Level != 1 {
		t.Fatalf("entries = %+v, want one level-1 entry", entries)
	}
}

func TestExtractTOCEntries_BodyHeadingEndsBlock(t *testing.T) {
	paras := parasFromText(
		"目录",
		"第一章 概述..........3",
		"第一章 概述与研究背景介绍",
		"第二章 方法..........9",
	)
	paras[2].StyleName = "Heading1"

	entries := extractTOCEntries(paras, 0)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (body heading should end the block)", len(entries))
	}
}
