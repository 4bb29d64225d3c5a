package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// Visual-heuristic thresholds. Many real documents style headings by hand
// instead of using named heading styles, so a short, bold, large first run
// counts as a heading too.
const (
	inferredMinSizePt    = 14
	inferredMaxTextLen   = 50
	inferredLevel1SizePt = 20
	inferredLevel2SizePt = 16
)

// headingSignal is the outcome of classifying one paragraph. Styled and
// inferred detection are separate channels; styled wins when both fire.
type headingSignal struct {
	kind  headingKind
	level int
}

type headingKind int

const (
	notHeading headingKind = iota
	styledHeading
	inferredHeading
)

// classifyHeading applies both detection channels to one paragraph.
func classifyHeading(p *docmodel.Paragraph) headingSignal {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return headingSignal{kind: notHeading}
	}

	if level := styleHeadingLevel(p.StyleName); level > 0 {
		return headingSignal{kind: styledHeading, level: level}
	}

	font := p.FirstFont
	if font.SizePt != nil && *font.SizePt >= inferredMinSizePt && font.Bold &&
		utf8.RuneCountInString(text) <= inferredMaxTextLen {
		level := 3
		switch {
		case *font.SizePt >= inferredLevel1SizePt:
			level = 1
		case *font.SizePt >= inferredLevel2SizePt:
			level = 2
		}
		return headingSignal{kind: inferredHeading, level: level}
	}

	return headingSignal{kind: notHeading}
}

// styleHeadingLevel extracts the level encoded in a heading style name
// ("Heading1", "heading 2", ...). Returns 0 for non-heading styles.
func styleHeadingLevel(styleName string) int {
	lower := strings.ToLower(styleName)
	if !strings.HasPrefix(lower, "heading") {
		return 0
	}
	rest := strings.TrimSpace(lower[len("heading"):])
	if rest == "" {
		return 1
	}
	if level, err := strconv.Atoi(rest); err == nil && level > 0 {
		return level
	}
	return 1
}

func parseHeadings(paras []docmodel.Paragraph) []docmodel.Heading {
	var headings []docmodel.Heading
	for i := range paras {
		p := &paras[i]
		sig := classifyHeading(p)
		if sig.kind == notHeading {
			continue
		}
		headings = append(headings, docmodel.Heading{
			Level:          sig.level,
			Text:           strings.TrimSpace(p.Text),
			StyleName:      p.StyleName,
			Alignment:      p.Alignment,
			ParagraphIndex: p.Index,
			Font:           p.FirstFont,
			Inferred:       sig.kind == inferredHeading,
		})
	}
	return headings
}
