package revision

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/doccheck/internal/ooxml"
)

const docNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func parseXML(t *testing.T, s string) *xmlquery.Node {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse test xml: %v", err)
	}
	return doc
}

func firstParagraph(t *testing.T, doc *xmlquery.Node) *xmlquery.Node {
	t.Helper()
	p := ooxml.FindOne(doc, "//w:p")
	if p == nil {
		t.Fatal("no w:p in test document")
	}
	return p
}

func TestEnableTrackRevisions(t *testing.T) {
	doc := parseXML(t, `<w:settings `+docNS+`></w:settings>`)

	rv := NewReviser("审校")
	if err := rv.EnableTrackRevisions(doc); err != nil {
		t.Fatalf("EnableTrackRevisions: %v", err)
	}

	track := ooxml.FindOne(doc, "//w:settings/w:trackRevisions")
	if track == nil || ooxml.Attr(track, "w:val") != "true" {
		t.Fatal("trackRevisions not enabled")
	}
	view := ooxml.FindOne(doc, "//w:settings/w:revisionView")
	if view == nil {
		t.Fatal("revisionView missing")
	}
	for _, attr := range []string{"w:ins", "w:del", "w:formatting", "w:markup"} {
		if ooxml.Attr(view, attr) != "true" {
			t.Errorf("revisionView %s = %q, want true", attr, ooxml.Attr(view, attr))
		}
	}
}

func TestEnableTrackRevisions_Idempotent(t *testing.T) {
	doc := parseXML(t, `<w:settings `+docNS+`><w:trackRevisions w:val="false"/></w:settings>`)

	rv := NewReviser("")
	if err := rv.EnableTrackRevisions(doc); err != nil {
		t.Fatalf("EnableTrackRevisions: %v", err)
	}

	tracks := ooxml.FindAll(doc, "//w:trackRevisions")
	if len(tracks) != 1 {
		t.Fatalf("got %d trackRevisions elements, want 1", len(tracks))
	}
	if ooxml.Attr(tracks[0], "w:val") != "true" {
		t.Error("existing trackRevisions not flipped to true")
	}
}

func TestSetPageMargins(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:sectPr><w:pgMar w:top="1000" w:bottom="1000" w:left="1000" w:right="1000"/></w:sectPr></w:body></w:document>`)

	rv := NewReviser("审校")
	rv.SetPageMargins(doc, 25.4, 25.4, 31.8, 31.8)

	pgMar := ooxml.FindOne(doc, "//w:pgMar")
	if got := ooxml.Attr(pgMar, "w:top"); got != "1440" {
		t.Errorf("top = %s twips, want 1440 (25.4mm)", got)
	}
	if got := ooxml.Attr(pgMar, "w:left"); got != "1803" {
		t.Errorf("left = %s twips, want 1803 (31.8mm)", got)
	}

	change := ooxml.FindOne(doc, "//w:sectPr/w:sectPrChange")
	if change == nil {
		t.Fatal("sectPrChange marker missing")
	}
	if ooxml.Attr(change, "w:author") != "审校" {
		t.Errorf("author = %q", ooxml.Attr(change, "w:author"))
	}
	if ooxml.Attr(change, "w:date") == "" || ooxml.Attr(change, "w:id") == "" {
		t.Error("revision id/date missing")
	}
}

func TestSetParagraphIndent(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:p><w:pPr><w:ind w:firstLine="420"/></w:pPr><w:r><w:t>正文</w:t></w:r></w:p></w:body></w:document>`)
	p := firstParagraph(t, doc)

	rv := NewReviser("")
	rv.SetParagraphIndent(p, 2)

	ind := ooxml.FindOne(doc, "//w:ind")
	if got := ooxml.Attr(ind, "w:firstLineChars"); got != "200" {
		t.Errorf("firstLineChars = %q, want 200", got)
	}
	if got := ooxml.Attr(ind, "w:firstLine"); got != "" {
		t.Errorf("fixed-length firstLine kept: %q", got)
	}
	if ooxml.FindOne(doc, "//w:pPr/w:pPrChange") == nil {
		t.Error("pPrChange marker missing")
	}
}

func TestSetParagraphIndent_CreatesPPrFirst(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:p><w:r><w:t>正文</w:t></w:r></w:p></w:body></w:document>`)
	p := firstParagraph(t, doc)

	rv := NewReviser("")
	rv.SetParagraphIndent(p, 2)

	first := p.FirstChild
	for first != nil && first.Type != xmlquery.ElementNode {
		first = first.NextSibling
	}
	if first == nil || first.Data != "pPr" {
		t.Fatalf("first element child = %v, want pPr", first)
	}
}

func TestSetRunStyle(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:p><w:r><w:t>标题文本</w:t></w:r><w:r><w:t>续</w:t></w:r></w:p></w:body></w:document>`)
	p := firstParagraph(t, doc)

	rv := NewReviser("")
	rv.SetRunStyle(p, "黑体", 16, "center", true)

	jc := ooxml.FindOne(doc, "//w:pPr/w:jc")
	if jc == nil || ooxml.Attr(jc, "w:val") != "center" {
		t.Error("alignment not applied")
	}

	runs := ooxml.FindAll(doc, "//w:r")
	// The original two runs; rPrChange children do not add w:r elements.
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		rPr := ooxml.Child(r, "w:rPr")
		if rPr == nil {
			t.Fatal("run without rPr after style fix")
		}
		fonts := ooxml.Child(rPr, "w:rFonts")
		if ooxml.Attr(fonts, "w:eastAsia") != "黑体" {
			t.Errorf("eastAsia font = %q", ooxml.Attr(fonts, "w:eastAsia"))
		}
		if ooxml.Attr(ooxml.Child(rPr, "w:sz"), "w:val") != "32" {
			t.Error("w:sz not 32 half-points")
		}
		if ooxml.Attr(ooxml.Child(rPr, "w:szCs"), "w:val") != "32" {
			t.Error("w:szCs not 32 half-points")
		}
		if ooxml.Child(rPr, "w:b") == nil {
			t.Error("bold not applied")
		}
		if ooxml.Child(rPr, "w:rPrChange") == nil {
			t.Error("rPrChange marker missing")
		}
	}
}

func TestReplaceText_DelInsPair(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>这是必需注意的</w:t></w:r></w:p></w:body></w:document>`)
	p := firstParagraph(t, doc)

	rv := NewReviser("审校")
	if !rv.ReplaceText(p, "必需", "必须") {
		t.Fatal("ReplaceText reported no match")
	}

	if ooxml.FindOne(doc, "//w:p/w:r[not(ancestor::w:del) and not(ancestor::w:ins)]") != nil {
		t.Error("original run still present outside revision wrappers")
	}

	del := ooxml.FindOne(doc, "//w:del")
	ins := ooxml.FindOne(doc, "//w:ins")
	if del == nil || ins == nil {
		t.Fatal("delete/insert pair missing")
	}
	if del.NextSibling != ins {
		t.Error("w:del not immediately followed by w:ins")
	}

	delText := ooxml.FindOne(del, ".//w:delText")
	if delText == nil || ooxml.InnerText(delText) != "这是必需注意的" {
		t.Errorf("deleted text = %v", delText)
	}
	insText := ooxml.FindOne(ins, ".//w:t")
	if insText == nil || ooxml.InnerText(insText) != "这是必须注意的" {
		t.Errorf("inserted text wrong")
	}

	// Both halves keep the original formatting.
	if ooxml.FindOne(del, ".//w:rPr/w:b") == nil || ooxml.FindOne(ins, ".//w:rPr/w:b") == nil {
		t.Error("run properties not preserved on del/ins pair")
	}
}

func TestReplaceText_NoMatch(t *testing.T) {
	doc := parseXML(t, `<w:document `+docNS+`><w:body><w:p><w:r><w:t>没有目标词</w:t></w:r></w:p></w:body></w:document>`)
	p := firstParagraph(t, doc)

	rv := NewReviser("")
	if rv.ReplaceText(p, "不存在", "别的") {
		t.Fatal("ReplaceText matched nothing but reported success")
	}
	if ooxml.FindOne(doc, "//w:del") != nil || ooxml.FindOne(doc, "//w:ins") != nil {
		t.Error("revision wrappers added without a match")
	}
}
