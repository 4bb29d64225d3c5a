package engine

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/parser"
	"github.com/dgallion1/doccheck/internal/rules"
)

// Tolerances applied by the deterministic matchers. Margin tolerance lives
// on the condition itself; these cover measurement noise in values the
// parser derives rather than reads.
const (
	paperTolMM       = 1.0
	fontSizeTolPt    = 0.5
	indentTolChars   = 0.5
	lineSpacingTolPt = 2.0
)

var sectionNumberRe = regexp.MustCompile(`^\d+(\.\d+)*`)

// matchDocument reports whether the whole-document condition holds. True
// means compliant.
func matchDocument(cond rules.Condition, snap *docmodel.Snapshot) bool {
	switch c := cond.(type) {
	case rules.PageCondition:
		return matchPage(snap.PageSettings, c)
	case rules.GenericCondition:
		return genericMatch(snap, c)
	default:
		return true
	}
}

func matchPage(ps docmodel.PageSettings, c rules.PageCondition) bool {
	margins := []struct {
		expected *float64
		actual   float64
	}{
		{c.TopMM, ps.Margins.TopMM},
		{c.BottomMM, ps.Margins.BottomMM},
		{c.LeftMM, ps.Margins.LeftMM},
		{c.RightMM, ps.Margins.RightMM},
	}
	for _, m := range margins {
		if m.expected != nil && math.Abs(m.actual-*m.expected) > c.ToleranceMM {
			return false
		}
	}

	if c.PaperName == "A4" {
		if math.Abs(ps.PaperWidthMM-210) >= paperTolMM || math.Abs(ps.PaperHeightMM-297) >= paperTolMM {
			return false
		}
	} else if c.WidthMM != nil && c.HeightMM != nil {
		if math.Abs(ps.PaperWidthMM-*c.WidthMM) > paperTolMM {
			return false
		}
		if math.Abs(ps.PaperHeightMM-*c.HeightMM) > paperTolMM {
			return false
		}
	}

	return true
}

// matchRun checks a run against a font condition. Runs whose font name or
// size could not be read are indeterminate and always pass; flagging them
// would punish style-inherited formatting the parser cannot resolve.
func matchRun(r *docmodel.Run, cond rules.Condition) bool {
	c, ok := cond.(rules.FontCondition)
	if !ok {
		if g, ok := cond.(rules.GenericCondition); ok {
			return genericMatch(r, g)
		}
		return true
	}

	if r.Font.Name == nil || r.Font.SizePt == nil {
		return true
	}

	if c.ChineseFont != "" && parser.ContainsChinese(r.Text) {
		if parser.NormalizeFontName(*r.Font.Name) != parser.NormalizeFontName(c.ChineseFont) {
			return false
		}
	}
	if c.EnglishFont != "" && parser.ContainsEnglish(r.Text) {
		if parser.NormalizeFontName(*r.Font.Name) != parser.NormalizeFontName(c.EnglishFont) {
			return false
		}
	}
	if c.ChineseSizePt != nil && parser.ContainsChinese(r.Text) {
		if math.Abs(*r.Font.SizePt-*c.ChineseSizePt) > fontSizeTolPt {
			return false
		}
	}
	if c.EnglishSizePt != nil && parser.ContainsEnglish(r.Text) {
		if math.Abs(*r.Font.SizePt-*c.EnglishSizePt) > fontSizeTolPt {
			return false
		}
	}
	return true
}

// matchParagraph checks block formatting. A missing indent counts as zero
// indent; a missing line spacing is indeterminate and passes.
func matchParagraph(p *docmodel.Paragraph, cond rules.Condition) bool {
	c, ok := cond.(rules.ParagraphCondition)
	if !ok {
		if g, ok := cond.(rules.GenericCondition); ok {
			return genericMatch(p, g)
		}
		return true
	}

	if c.FirstLineIndentChars != nil {
		actual := 0.0
		if p.Format.FirstLineIndentChars != nil {
			actual = *p.Format.FirstLineIndentChars
		}
		if math.Abs(actual-*c.FirstLineIndentChars) > indentTolChars {
			return false
		}
	}

	if c.LineSpacingPt != nil {
		actual := resolveLineSpacingPt(p)
		if actual != 0 && math.Abs(actual-*c.LineSpacingPt) > lineSpacingTolPt {
			return false
		}
	}

	return true
}

// resolveLineSpacingPt turns whatever spacing shape the paragraph carries
// into points. Multipliers convert through the paragraph's leading font
// size, defaulting to 12pt.
func resolveLineSpacingPt(p *docmodel.Paragraph) float64 {
	if p.Format.LineSpacingPt != nil {
		return *p.Format.LineSpacingPt
	}
	if p.Format.LineSpacing == nil {
		return 0
	}
	v := *p.Format.LineSpacing
	if v > 10 {
		// Already points; multipliers never reach double digits.
		return v
	}
	size := 12.0
	if p.FirstFont.SizePt != nil {
		size = *p.FirstFont.SizePt
	}
	return v * size
}

// matchHeading checks a heading against its level's expected style. Levels
// without a spec pass, as do headings with unreadable fonts.
func matchHeading(h *docmodel.Heading, cond rules.Condition) bool {
	c, ok := cond.(rules.HeadingCondition)
	if !ok {
		if g, ok := cond.(rules.GenericCondition); ok {
			return genericMatch(h, g)
		}
		return true
	}

	spec, ok := c.Levels[h.Level]
	if !ok {
		return true
	}
	if h.Font.Name == nil || h.Font.SizePt == nil {
		return true
	}

	if spec.Font != "" {
		if parser.NormalizeFontName(*h.Font.Name) != parser.NormalizeFontName(spec.Font) {
			return false
		}
	}
	if spec.SizePt != nil && math.Abs(*h.Font.SizePt-*spec.SizePt) > fontSizeTolPt {
		return false
	}
	if spec.Bold != nil && h.Font.Bold != *spec.Bold {
		return false
	}
	if spec.Alignment != "" && h.Alignment != spec.Alignment {
		return false
	}
	return true
}

// matchSection checks section numbering against the heading text.
func matchSection(text string, cond rules.Condition) bool {
	c, ok := cond.(rules.HeadingCondition)
	if !ok {
		return true
	}
	if c.NumberStyle == "" {
		return true
	}
	return sectionNumberRe.MatchString(strings.TrimSpace(text))
}

// matchCaption checks a table or figure caption's placement and prefix.
func matchCaption(caption, position string, cond rules.Condition) bool {
	c, ok := cond.(rules.FigureCondition)
	if !ok {
		return true
	}
	if c.CaptionPosition != "" && position != c.CaptionPosition {
		return false
	}
	if c.CaptionPrefix != "" && !strings.HasPrefix(caption, c.CaptionPrefix) {
		return false
	}
	return true
}

// genericMatch is the field-equality fallback for conditions no category
// owns: every condition key must equal the target's JSON field of the same
// name.
func genericMatch(target any, cond rules.GenericCondition) bool {
	data, err := json.Marshal(target)
	if err != nil {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return true
	}
	for key, expected := range cond {
		if !looseEqual(fields[key], expected) {
			return false
		}
	}
	return true
}

// looseEqual compares scalars across the numeric shapes YAML and JSON
// decoders produce.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
