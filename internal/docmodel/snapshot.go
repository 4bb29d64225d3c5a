// Package docmodel holds the immutable, request-scoped values exchanged
// between the parser, the rule engine and the revision engine. Nothing in
// here persists state or touches the container format directly.
package docmodel

// Snapshot is the structured view of one parsed document.
type Snapshot struct {
	Info         Info         `json:"info"`
	PageSettings PageSettings `json:"page_settings"`
	Paragraphs   []Paragraph  `json:"paragraphs"`
	Runs         []Run        `json:"runs"`
	Headings     []Heading    `json:"headings"`
	Tables       []Table      `json:"tables"`
	Figures      []Figure     `json:"figures"`
	TOC          TOC          `json:"table_of_contents"`
	HeadingTree  HeadingTree  `json:"heading_structure"`
}

// Info carries basic file metadata.
type Info struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
}

// PageSettings describes the first section's geometry in millimetres.
type PageSettings struct {
	PaperWidthMM  float64 `json:"paper_width_mm"`
	PaperHeightMM float64 `json:"paper_height_mm"`
	Margins       Margins `json:"margins"`
}

// Margins are page margins in millimetres.
type Margins struct {
	TopMM    float64 `json:"top_mm"`
	BottomMM float64 `json:"bottom_mm"`
	LeftMM   float64 `json:"left_mm"`
	RightMM  float64 `json:"right_mm"`
}

// Font is resolved character formatting for a run. Name and SizePt are nil
// when the value could not be read directly off the run; evaluators treat
// such runs as indeterminate rather than violations.
type Font struct {
	Name   *string  `json:"name"`
	SizePt *float64 `json:"size_pt"`
	Bold   bool     `json:"bold"`
}

// Paragraph is one block-level unit in document order. Index is the stable
// 0-based position used by locations and by the revision engine.
type Paragraph struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	StyleName string `json:"style_name"`
	Alignment string `json:"alignment"`
	Format    Format `json:"formatting"`
	FirstFont Font   `json:"font"`
	Page      int    `json:"page_number"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	LineCount int    `json:"line_count"`
}

// Format is resolved block formatting for a paragraph. Pointer fields are
// nil when the source carries no explicit value.
type Format struct {
	FirstLineIndentMM    *float64 `json:"first_line_indent_mm,omitempty"`
	FirstLineIndentChars *float64 `json:"first_line_indent_chars,omitempty"`
	LineSpacing          *float64 `json:"line_spacing,omitempty"`
	LineSpacingPt        *float64 `json:"line_spacing_pt,omitempty"`
	LineSpacingRule      string   `json:"line_spacing_rule,omitempty"`
	SpaceBeforePt        *float64 `json:"space_before_pt,omitempty"`
}

// Run is a contiguous span of uniformly formatted text inside a paragraph.
type Run struct {
	ParagraphIndex int    `json:"paragraph_index"`
	RunIndex       int    `json:"run_index"`
	Text           string `json:"text"`
	Font           Font   `json:"font"`
	Page           int    `json:"page_number"`
}

// Heading marks a paragraph acting as a section boundary.
type Heading struct {
	Level          int    `json:"level"`
	Text           string `json:"text"`
	StyleName      string `json:"style_name"`
	Alignment      string `json:"alignment"`
	ParagraphIndex int    `json:"paragraph_index"`
	Font           Font   `json:"font"`
	// Inferred is true when the heading was detected by the visual
	// heuristic rather than an explicit heading style.
	Inferred bool `json:"inferred"`
}

// Table is a table plus its discovered caption, if any.
type Table struct {
	Index                 int    `json:"index"`
	Caption               string `json:"caption,omitempty"`
	CaptionParagraphIndex *int   `json:"caption_paragraph_index,omitempty"`
	CaptionPosition       string `json:"caption_position"`
	ParagraphIndex        int    `json:"paragraph_index"`
}

// Figure is an inline image plus its discovered caption, if any.
type Figure struct {
	Index                 int    `json:"index"`
	Caption               string `json:"caption,omitempty"`
	CaptionParagraphIndex *int   `json:"caption_paragraph_index,omitempty"`
	CaptionPosition       string `json:"caption_position"`
	ParagraphIndex        int    `json:"paragraph_index"`
}

// TOC is the discovered table of contents.
type TOC struct {
	Exists         bool       `json:"exists"`
	ParagraphIndex *int       `json:"paragraph_index,omitempty"`
	Entries        []TOCEntry `json:"entries"`
}

// TOCEntry is one recognized line of the table of contents.
type TOCEntry struct {
	Title          string `json:"title"`
	Level          int    `json:"level"`
	Page           *int   `json:"page_number,omitempty"`
	ParagraphIndex int    `json:"paragraph_index"`
	OriginalText   string `json:"original_text"`
}

// HeadingTree is the heading hierarchy as both a nested tree and a flat list.
type HeadingTree struct {
	Tree []*HeadingNode `json:"tree"`
	Flat []FlatHeading  `json:"flat"`
}

// HeadingNode is a node of the nested heading tree.
type HeadingNode struct {
	Level          int            `json:"level"`
	Text           string         `json:"text"`
	ParagraphIndex int            `json:"paragraph_index"`
	Children       []*HeadingNode `json:"children"`
}

// FlatHeading is a flat-list heading with parent/child links by text.
type FlatHeading struct {
	Level          int      `json:"level"`
	Text           string   `json:"text"`
	ParagraphIndex int      `json:"paragraph_index"`
	Parent         string   `json:"parent,omitempty"`
	Children       []string `json:"children"`
}

// HeadingIndexSet returns the set of paragraph indices owned by headings.
// The rule engine uses it to keep body-only checks off heading paragraphs.
func (s *Snapshot) HeadingIndexSet() map[int]bool {
	set := make(map[int]bool, len(s.Headings))
	for _, h := range s.Headings {
		set[h.ParagraphIndex] = true
	}
	return set
}

// ParagraphAt returns the paragraph at idx, or nil if out of range.
func (s *Snapshot) ParagraphAt(idx int) *Paragraph {
	if idx < 0 || idx >= len(s.Paragraphs) {
		return nil
	}
	return &s.Paragraphs[idx]
}
