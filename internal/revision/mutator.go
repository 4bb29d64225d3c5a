// Package revision produces a corrected copy of a document where every fix
// is expressed as a native track-changes mark, so each edit stays reversible
// in the consuming word processor.
package revision

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/doccheck/internal/ooxml"
)

const twipsPerMM = 1440.0 / 25.4

// Reviser performs element-level mutations on document part trees, stamping
// every change with revision metadata.
type Reviser struct {
	author string
	date   string
	nextID int
}

func NewReviser(author string) *Reviser {
	if author == "" {
		author = "DocCheck"
	}
	return &Reviser{
		author: author,
		date:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		nextID: 1,
	}
}

func (rv *Reviser) revisionAttrs() []string {
	id := rv.nextID
	rv.nextID++
	return []string{
		"w:id", strconv.Itoa(id),
		"w:author", rv.author,
		"w:date", rv.date,
	}
}

// EnableTrackRevisions switches on change tracking in the settings part and
// configures the revision view so marks display without manual toggling.
func (rv *Reviser) EnableTrackRevisions(settingsDoc *xmlquery.Node) error {
	settings := ooxml.FindOne(settingsDoc, "//w:settings")
	if settings == nil {
		return fmt.Errorf("settings part has no w:settings element")
	}

	track := ooxml.EnsureChild(settings, "w:trackRevisions")
	ooxml.SetAttr(track, "w:val", "true")

	view := ooxml.EnsureChild(settings, "w:revisionView")
	ooxml.SetAttr(view, "w:ins", "true")
	ooxml.SetAttr(view, "w:del", "true")
	ooxml.SetAttr(view, "w:formatting", "true")
	ooxml.SetAttr(view, "w:markup", "true")
	return nil
}

// SetPageMargins rewrites every section's margins and appends a
// section-properties-change marker recording that the section was edited.
func (rv *Reviser) SetPageMargins(doc *xmlquery.Node, topMM, bottomMM, leftMM, rightMM float64) {
	for _, sectPr := range ooxml.FindAll(doc, "//w:sectPr") {
		pgMar := ooxml.EnsureChild(sectPr, "w:pgMar")
		ooxml.SetAttr(pgMar, "w:top", mmToTwipsAttr(topMM))
		ooxml.SetAttr(pgMar, "w:bottom", mmToTwipsAttr(bottomMM))
		ooxml.SetAttr(pgMar, "w:left", mmToTwipsAttr(leftMM))
		ooxml.SetAttr(pgMar, "w:right", mmToTwipsAttr(rightMM))

		change := ooxml.Elem("w:sectPrChange", rv.revisionAttrs()...)
		ooxml.AppendChild(sectPr, change)
	}
}

// SetParagraphIndent sets the first-line indent in character units and marks
// the paragraph properties as changed. Any fixed-length indent attribute is
// dropped so the two units cannot conflict.
func (rv *Reviser) SetParagraphIndent(p *xmlquery.Node, chars float64) {
	pPr := rv.ensurePPr(p)
	ind := ooxml.EnsureChild(pPr, "w:ind")
	removeAttr(ind, "firstLine")
	ooxml.SetAttr(ind, "w:firstLineChars", strconv.Itoa(int(math.Round(chars*100))))

	rv.markParagraphPropertyChange(p)
}

// SetRunStyle applies font family, size and boldness to every run of the
// paragraph, filling the CJK font slot and both size slots, and stamps each
// run with a run-properties-change marker. An empty alignment leaves
// justification untouched.
func (rv *Reviser) SetRunStyle(p *xmlquery.Node, fontName string, sizePt float64, alignment string, bold bool) {
	if alignment != "" {
		pPr := rv.ensurePPr(p)
		jc := ooxml.EnsureChild(pPr, "w:jc")
		ooxml.SetAttr(jc, "w:val", alignment)
	}

	halfPoints := strconv.Itoa(int(math.Round(sizePt * 2)))

	for _, r := range ooxml.Children(p, "w:r") {
		rPr := rv.ensureRPr(r)

		fonts := ooxml.EnsureChild(rPr, "w:rFonts")
		ooxml.SetAttr(fonts, "w:ascii", fontName)
		ooxml.SetAttr(fonts, "w:hAnsi", fontName)
		ooxml.SetAttr(fonts, "w:eastAsia", fontName)

		sz := ooxml.EnsureChild(rPr, "w:sz")
		ooxml.SetAttr(sz, "w:val", halfPoints)
		szCs := ooxml.EnsureChild(rPr, "w:szCs")
		ooxml.SetAttr(szCs, "w:val", halfPoints)

		if bold {
			ooxml.EnsureChild(rPr, "w:b")
		} else if b := ooxml.Child(rPr, "w:b"); b != nil {
			ooxml.Remove(b)
		}

		change := ooxml.Elem("w:rPrChange", rv.revisionAttrs()...)
		ooxml.AppendChild(change, ooxml.Elem("w:rPr"))
		ooxml.AppendChild(rPr, change)
	}

	rv.markParagraphPropertyChange(p)
}

// ReplaceText replaces old with new inside the first run containing it,
// expressed as a parallel delete/insert pair that preserves the run's
// formatting. Reports whether a run matched.
func (rv *Reviser) ReplaceText(p *xmlquery.Node, old, new string) bool {
	if old == "" {
		return false
	}

	for _, r := range ooxml.Children(p, "w:r") {
		text := runText(r)
		if !strings.Contains(text, old) {
			continue
		}

		rPr := ooxml.Child(r, "w:rPr")

		delRun := ooxml.Elem("w:r")
		if rPr != nil {
			ooxml.AppendChild(delRun, copyNode(rPr))
		}
		delText := ooxml.Elem("w:delText")
		ooxml.SetAttr(delText, "xml:space", "preserve")
		ooxml.AppendChild(delText, ooxml.Text(text))
		ooxml.AppendChild(delRun, delText)
		delWrapper := ooxml.Elem("w:del", rv.revisionAttrs()...)
		ooxml.AppendChild(delWrapper, delRun)

		insRun := ooxml.Elem("w:r")
		if rPr != nil {
			ooxml.AppendChild(insRun, copyNode(rPr))
		}
		insText := ooxml.Elem("w:t")
		ooxml.SetAttr(insText, "xml:space", "preserve")
		ooxml.AppendChild(insText, ooxml.Text(strings.ReplaceAll(text, old, new)))
		ooxml.AppendChild(insRun, insText)
		insWrapper := ooxml.Elem("w:ins", rv.revisionAttrs()...)
		ooxml.AppendChild(insWrapper, insRun)

		ooxml.InsertBefore(r, delWrapper)
		ooxml.InsertBefore(r, insWrapper)
		ooxml.Remove(r)
		return true
	}
	return false
}

// markParagraphPropertyChange appends a pPrChange with an empty old state,
// which word processors render as "properties were edited here".
func (rv *Reviser) markParagraphPropertyChange(p *xmlquery.Node) {
	pPr := rv.ensurePPr(p)
	change := ooxml.Elem("w:pPrChange", rv.revisionAttrs()...)
	ooxml.AppendChild(change, ooxml.Elem("w:pPr"))
	ooxml.AppendChild(pPr, change)
}

// ensurePPr returns the paragraph's pPr, creating it as the first child if
// absent. Schema order requires pPr before any run.
func (rv *Reviser) ensurePPr(p *xmlquery.Node) *xmlquery.Node {
	if pPr := ooxml.Child(p, "w:pPr"); pPr != nil {
		return pPr
	}
	pPr := ooxml.Elem("w:pPr")
	if first := p.FirstChild; first != nil {
		ooxml.InsertBefore(first, pPr)
	} else {
		ooxml.AppendChild(p, pPr)
	}
	return pPr
}

// ensureRPr returns the run's rPr, creating it as the first child if absent.
func (rv *Reviser) ensureRPr(r *xmlquery.Node) *xmlquery.Node {
	if rPr := ooxml.Child(r, "w:rPr"); rPr != nil {
		return rPr
	}
	rPr := ooxml.Elem("w:rPr")
	if first := r.FirstChild; first != nil {
		ooxml.InsertBefore(first, rPr)
	} else {
		ooxml.AppendChild(r, rPr)
	}
	return rPr
}

// runText concatenates the run's w:t contents.
func runText(r *xmlquery.Node) string {
	var b strings.Builder
	for _, t := range ooxml.Children(r, "w:t") {
		b.WriteString(ooxml.InnerText(t))
	}
	return b.String()
}

// copyNode deep-copies an element subtree, detached from any parent.
func copyNode(n *xmlquery.Node) *xmlquery.Node {
	dup := &xmlquery.Node{
		Type:   n.Type,
		Data:   n.Data,
		Prefix: n.Prefix,
	}
	if len(n.Attr) > 0 {
		dup.Attr = make([]xmlquery.Attr, len(n.Attr))
		copy(dup.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ooxml.AppendChild(dup, copyNode(c))
	}
	return dup
}

func removeAttr(n *xmlquery.Node, local string) {
	for i, a := range n.Attr {
		if a.Name.Local == local {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func mmToTwipsAttr(mm float64) string {
	return strconv.Itoa(int(math.Round(mm * twipsPerMM)))
}
