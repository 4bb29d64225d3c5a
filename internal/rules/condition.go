package rules

import "fmt"

// Condition is the closed set of category-typed predicate data. Exactly one
// concrete type exists per rule category; an unknown category decodes to
// GenericCondition so evaluation can fall through to field equality.
type Condition interface {
	isCondition()
}

// PageCondition constrains section geometry. Nil fields are unchecked.
type PageCondition struct {
	TopMM       *float64
	BottomMM    *float64
	LeftMM      *float64
	RightMM     *float64
	ToleranceMM float64
	PaperName   string
	WidthMM     *float64
	HeightMM    *float64
}

// FontCondition constrains run character formatting, split by script.
type FontCondition struct {
	ChineseFont   string
	EnglishFont   string
	ChineseSizePt *float64
	EnglishSizePt *float64
}

// ParagraphCondition constrains block formatting of body paragraphs.
type ParagraphCondition struct {
	FirstLineIndentChars *float64
	LineSpacingPt        *float64
}

// HeadingLevelSpec is the expected style for one heading level.
type HeadingLevelSpec struct {
	Font      string
	SizePt    *float64
	Bold      *bool
	Alignment string
}

// HeadingCondition constrains heading styles per level, or the numbering
// style when matched against sections.
type HeadingCondition struct {
	Levels      map[int]HeadingLevelSpec
	NumberStyle string
}

// FigureCondition constrains caption placement and prefix of tables/figures.
type FigureCondition struct {
	CaptionPosition string
	CaptionPrefix   string
}

// StructureCondition carries the inputs of whole-document checks.
type StructureCondition struct {
	RequiredSections []string
}

// GenericCondition is the direct field-equality fallback.
type GenericCondition map[string]any

func (PageCondition) isCondition()      {}
func (FontCondition) isCondition()      {}
func (ParagraphCondition) isCondition() {}
func (HeadingCondition) isCondition()   {}
func (FigureCondition) isCondition()    {}
func (StructureCondition) isCondition() {}
func (GenericCondition) isCondition()   {}

// DecodeCondition turns a raw condition map into the category's variant.
// Tolerances default here so evaluators never re-derive them.
func DecodeCondition(category string, raw map[string]any) (Condition, error) {
	switch category {
	case CategoryPage:
		c := PageCondition{ToleranceMM: 0.5}
		c.TopMM = floatKey(raw, "top_mm")
		c.BottomMM = floatKey(raw, "bottom_mm")
		c.LeftMM = floatKey(raw, "left_mm")
		c.RightMM = floatKey(raw, "right_mm")
		if v := floatKey(raw, "tolerance_mm"); v != nil {
			c.ToleranceMM = *v
		}
		c.PaperName, _ = raw["paper_name"].(string)
		c.WidthMM = floatKey(raw, "width_mm")
		c.HeightMM = floatKey(raw, "height_mm")
		return c, nil

	case CategoryFont:
		c := FontCondition{}
		c.ChineseFont, _ = raw["chinese_font"].(string)
		c.EnglishFont, _ = raw["english_font"].(string)
		c.ChineseSizePt = floatKey(raw, "chinese_size_pt")
		c.EnglishSizePt = floatKey(raw, "english_size_pt")
		return c, nil

	case CategoryParagraph:
		c := ParagraphCondition{}
		c.FirstLineIndentChars = floatKey(raw, "first_line_indent_chars")
		c.LineSpacingPt = floatKey(raw, "paragraph_line_spacing")
		return c, nil

	case CategoryHeading:
		c := HeadingCondition{Levels: map[int]HeadingLevelSpec{}}
		c.NumberStyle, _ = raw["number_style"].(string)
		for level := 1; level <= 6; level++ {
			sub, ok := raw[fmt.Sprintf("level%d", level)].(map[string]any)
			if !ok {
				continue
			}
			spec := HeadingLevelSpec{}
			spec.Font, _ = sub["font"].(string)
			spec.SizePt = floatKey(sub, "size_pt")
			if b, ok := sub["bold"].(bool); ok {
				spec.Bold = &b
			}
			spec.Alignment, _ = sub["alignment"].(string)
			c.Levels[level] = spec
		}
		return c, nil

	case CategoryFigure:
		c := FigureCondition{}
		c.CaptionPosition, _ = raw["caption_position"].(string)
		c.CaptionPrefix, _ = raw["caption_prefix"].(string)
		return c, nil

	case CategoryStructure:
		c := StructureCondition{}
		if list, ok := raw["required_sections"].([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok {
					c.RequiredSections = append(c.RequiredSections, s)
				}
			}
		}
		return c, nil

	default:
		return GenericCondition(raw), nil
	}
}

// floatKey reads a numeric map entry as *float64, accepting the int and
// float shapes YAML and JSON decoders produce.
func floatKey(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}
