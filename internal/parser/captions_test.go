package parser

import (
	"testing"
)

func TestParseTables_CaptionAbove(t *testing.T) {
	paras := parasFromText(
		"正文段落",
		"表1 实验参数",
		"表格后的说明文字",
	)
	// Table sits between paragraphs 1 and 2.
	tables := parseTables([]int{2}, paras)

	if len(tables) != 1 {
		t.Fatalf("got %d tables", len(tables))
	}
	tbl := tables[0]
	if tbl.Caption != "表1 实验参数" {
		t.Errorf("caption = %q", tbl.Caption)
	}
	if tbl.CaptionParagraphIndex == nil || *tbl.CaptionParagraphIndex != 1 {
		t.Errorf("caption index = %v, want 1", tbl.CaptionParagraphIndex)
	}
	if tbl.CaptionPosition != "above" {
		t.Errorf("caption position = %q", tbl.CaptionPosition)
	}
}

func TestParseTables_NoCaption(t *testing.T) {
	paras := parasFromText("正文一", "正文二", "正文三")
	tables := parseTables([]int{1}, paras)

	if tables[0].Caption != "" || tables[0].CaptionParagraphIndex != nil {
		t.Errorf("phantom caption found: %+v", tables[0])
	}
}

func TestParseFigures_CaptionBelow(t *testing.T) {
	paras := parasFromText(
		"正文段落",
		"",
		"图2-1 系统架构",
	)
	figures := parseFigures([]int{1}, paras)

	if len(figures) != 1 {
		t.Fatalf("got %d figures", len(figures))
	}
	fig := figures[0]
	if fig.Caption != "图2-1 系统架构" {
		t.Errorf("caption = %q", fig.Caption)
	}
	if fig.CaptionParagraphIndex == nil || *fig.CaptionParagraphIndex != 2 {
		t.Errorf("caption index = %v, want 2", fig.CaptionParagraphIndex)
	}
	if fig.CaptionPosition != "below" {
		t.Errorf("caption position = %q", fig.CaptionPosition)
	}
}

func TestFindCaption_FullWidthSeparators(t *testing.T) {
	paras := parasFromText("图１", "图3－2 全角分隔", "锚点段落")

	text, idx := findCaption(paras, 2, figureCaptionRe)
	if text != "图3－2 全角分隔" || idx == nil || *idx != 1 {
		t.Errorf("caption = %q at %v", text, idx)
	}
}

func TestFindCaption_PrefersEarlierOffset(t *testing.T) {
	paras := parasFromText(
		"表1 在前两段",
		"锚点前一段",
		"锚点",
		"表2 在后一段",
	)
	text, _ := findCaption(paras, 2, tableCaptionRe)
	if text != "表1 在前两段" {
		t.Errorf("caption = %q, want the earlier offset to win", text)
	}
}
