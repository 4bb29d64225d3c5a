// Package parser converts a .docx container into a docmodel.Snapshot.
// Everything here is deterministic: where the container lacks explicit
// metadata (headings without heading styles, captions, the table of
// contents) the parser applies the documented heuristics instead.
package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/fumiama/go-docx"
)

// ErrNotFound marks a missing input file, distinct from a structural
// parse failure.
var ErrNotFound = errors.New("document not found")

// Paragraphs per page used for page/line estimation. The container does not
// record pagination, so positions are estimates for display purposes.
const paragraphsPerPage = 25

// Parse reads the container at path and builds a snapshot. A missing file
// returns ErrNotFound; any other failure is an all-or-nothing parse error,
// never a partial snapshot.
func Parse(path string) (snap *docmodel.Snapshot, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	doc, err := docx.Parse(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	// The container walk dereferences optional nodes; a malformed document
	// must surface as a parse error, not a crash.
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("parse docx: malformed document structure: %v", r)
		}
	}()

	snap = buildSnapshot(doc)
	snap.Info = docmodel.Info{
		Filename: filepath.Base(path),
		FileSize: st.Size(),
	}

	// Section geometry lives in sectPr, which go-docx does not model; read
	// it off the raw part.
	ps, err := parsePageSettings(path)
	if err != nil {
		return nil, err
	}
	snap.PageSettings = ps

	return snap, nil
}

// bodyWalk is the result of one pass over the body items.
type bodyWalk struct {
	paragraphs []*docx.Paragraph
	// tableAnchors holds, per table, the paragraph index immediately after
	// the table. Captions are scanned around that anchor.
	tableAnchors []int
	// drawingParas holds paragraph indices containing inline drawings.
	drawingParas []int
}

func walkBody(doc *docx.Docx) bodyWalk {
	var w bodyWalk
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			idx := len(w.paragraphs)
			w.paragraphs = append(w.paragraphs, it)
			if paragraphHasDrawing(it) {
				w.drawingParas = append(w.drawingParas, idx)
			}
		case *docx.Table:
			w.tableAnchors = append(w.tableAnchors, len(w.paragraphs))
		}
	}
	return w
}

func paragraphHasDrawing(p *docx.Paragraph) bool {
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if _, ok := rc.(*docx.Drawing); ok {
				return true
			}
		}
	}
	return false
}

func buildSnapshot(doc *docx.Docx) *docmodel.Snapshot {
	w := walkBody(doc)

	snap := &docmodel.Snapshot{}
	snap.Paragraphs, snap.Runs = parseParagraphs(w.paragraphs)
	snap.Headings = parseHeadings(snap.Paragraphs)
	snap.Tables = parseTables(w.tableAnchors, snap.Paragraphs)
	snap.Figures = parseFigures(w.drawingParas, snap.Paragraphs)
	snap.TOC = parseTOC(snap.Paragraphs)
	snap.HeadingTree = buildHeadingTree(snap.Headings)
	return snap
}

// parseParagraphs walks body paragraphs and produces the ordered paragraph
// and run lists with estimated page/line positions.
func parseParagraphs(paras []*docx.Paragraph) ([]docmodel.Paragraph, []docmodel.Run) {
	out := make([]docmodel.Paragraph, 0, len(paras))
	var runs []docmodel.Run

	currentPage := 1
	lineInPage := 1

	for idx, p := range paras {
		text := paragraphText(p)
		trimmed := strings.TrimSpace(text)

		page := idx/paragraphsPerPage + 1
		if page > currentPage {
			currentPage = page
			lineInPage = 1
		}
		lineCount := estimateLineCount(trimmed)
		startLine := lineInPage
		lineInPage += lineCount
		endLine := lineInPage - 1

		para := docmodel.Paragraph{
			Index:     idx,
			Text:      text,
			StyleName: paragraphStyle(p),
			Alignment: paragraphAlignment(p),
			Format:    parseFormat(p),
			Page:      page,
			StartLine: startLine,
			EndLine:   endLine,
			LineCount: lineCount,
		}

		runIdx := 0
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			rt := runText(run)
			if rt == "" {
				continue
			}
			font := fontFromRun(run)
			if runIdx == 0 {
				para.FirstFont = font
			}
			runs = append(runs, docmodel.Run{
				ParagraphIndex: idx,
				RunIndex:       runIdx,
				Text:           rt,
				Font:           font,
				Page:           page,
			})
			runIdx++
		}

		out = append(out, para)
	}

	return out, runs
}

// estimateLineCount mirrors the display-position heuristic: one line plus
// one per 50 characters, plus explicit breaks.
func estimateLineCount(text string) int {
	if text == "" {
		return 1
	}
	n := strings.Count(text, "\n") + 1 + utf8.RuneCountInString(text)/50
	if n < 1 {
		n = 1
	}
	return n
}

func paragraphText(p *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		buf.WriteString(runText(run))
	}
	return buf.String()
}

func runText(r *docx.Run) string {
	var buf strings.Builder
	for _, rc := range r.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}

func paragraphStyle(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Style == nil {
		return "Normal"
	}
	return p.Properties.Style.Val
}

func paragraphAlignment(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Justification == nil {
		return "left"
	}
	switch p.Properties.Justification.Val {
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "both", "distribute":
		return "justify"
	default:
		return "left"
	}
}
