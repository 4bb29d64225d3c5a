package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/fumiama/go-docx"
)

// fontAliases maps CJK display names to their canonical family names.
// Documents use both interchangeably; comparisons happen on the canonical
// form only.
var fontAliases = map[string]string{
	"宋体":              "SimSun",
	"SimSun":          "SimSun",
	"黑体":              "SimHei",
	"SimHei":          "SimHei",
	"微软雅黑":            "Microsoft YaHei",
	"Microsoft YaHei": "Microsoft YaHei",
	"楷体":              "KaiTi",
	"KaiTi":           "KaiTi",
	"仿宋":              "FangSong",
	"FangSong":        "FangSong",
	"方正小标宋简体":         "方正小标宋简体",
}

// NormalizeFontName canonicalizes a font family: first entry of a
// comma-separated fallback list, mapped through the alias table.
func NormalizeFontName(name string) string {
	if name == "" {
		return ""
	}
	raw := strings.TrimSpace(strings.SplitN(name, ",", 2)[0])
	if canonical, ok := fontAliases[raw]; ok {
		return canonical
	}
	return raw
}

// fontFromRun reads the run's direct character formatting. Values the run
// does not carry stay nil: style-inherited formatting is not resolved, and
// downstream checks skip rather than flag such runs.
func fontFromRun(r *docx.Run) docmodel.Font {
	f := docmodel.Font{}
	rp := r.RunProperties
	if rp == nil {
		return f
	}

	if rp.Fonts != nil {
		name := rp.Fonts.EastAsia
		if name == "" {
			name = rp.Fonts.ASCII
		}
		if name != "" {
			n := NormalizeFontName(name)
			f.Name = &n
		}
	}

	// w:sz values are half-points.
	if rp.Size != nil {
		if half, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil && half > 0 {
			pt := half / 2
			f.SizePt = &pt
		}
	}

	f.Bold = rp.Bold != nil
	return f
}

const (
	twipsPerPoint = 20.0
	mmPerPoint    = 0.352778
	// One full-width character is roughly 2.65mm at body size; used to
	// express twip indents in character units.
	mmPerChar = 2.65
	// The line attribute counts 240ths of a line under the auto rule.
	lineUnitsPerLine = 240.0
)

// parseFormat reads the paragraph's direct block formatting.
func parseFormat(p *docx.Paragraph) docmodel.Format {
	var f docmodel.Format
	if p.Properties == nil {
		return f
	}

	if ind := p.Properties.Ind; ind != nil {
		if ind.FirstLineChars > 0 {
			chars := float64(ind.FirstLineChars) / 100
			f.FirstLineIndentChars = &chars
			mm := round2(chars * mmPerChar)
			f.FirstLineIndentMM = &mm
		} else if ind.FirstLine > 0 {
			mm := round2(float64(ind.FirstLine) / twipsPerPoint * mmPerPoint)
			f.FirstLineIndentMM = &mm
			chars := round1(mm / mmPerChar)
			f.FirstLineIndentChars = &chars
		}
	}

	if sp := p.Properties.Spacing; sp != nil && sp.Line > 0 {
		if sp.LineRule == "" || sp.LineRule == "auto" {
			mult := round2(float64(sp.Line) / lineUnitsPerLine)
			f.LineSpacing = &mult
			size := firstRunSizePt(p)
			pt := round2(mult * size)
			f.LineSpacingPt = &pt
			f.LineSpacingRule = "MULTIPLE"
		} else {
			pt := round2(float64(sp.Line) / twipsPerPoint)
			f.LineSpacing = &pt
			f.LineSpacingPt = &pt
			f.LineSpacingRule = "EXACT"
		}
	}

	// go-docx only models the w:before side of paragraph spacing.
	if sp := p.Properties.Spacing; sp != nil && sp.Before > 0 {
		v := round2(float64(sp.Before) / twipsPerPoint)
		f.SpaceBeforePt = &v
	}

	return f
}

// firstRunSizePt resolves the font size used for multiplier spacing
// conversion, defaulting to 12pt when no run carries one.
func firstRunSizePt(p *docx.Paragraph) float64 {
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		if runText(run) == "" {
			continue
		}
		font := fontFromRun(run)
		if font.SizePt != nil {
			return *font.SizePt
		}
		break
	}
	return 12
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
