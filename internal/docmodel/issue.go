package docmodel

import "fmt"

// Location types.
const (
	LocDocument  = "document"
	LocParagraph = "paragraph"
	LocRun       = "run"
	LocHeading   = "heading"
	LocTable     = "table"
	LocFigure    = "figure"
	LocTOC       = "toc"
	LocMerged    = "merged"
)

// Location points at the document node an issue was raised against. Type
// selects which locator fields are meaningful. The revision engine resolves
// locations back to concrete paragraphs.
type Location struct {
	Type           string `json:"type"`
	Index          int    `json:"index,omitempty"`
	ParagraphIndex int    `json:"paragraph_index,omitempty"`
	Page           int    `json:"page_number,omitempty"`
	StartLine      int    `json:"start_line,omitempty"`
	EndLine        int    `json:"end_line,omitempty"`
	Level          int    `json:"level,omitempty"`
	Text           string `json:"text,omitempty"`
	Description    string `json:"description"`
	// Count is set on merged summary locations only.
	Count int `json:"count,omitempty"`
}

// ParagraphLocation builds a location for a body paragraph.
func ParagraphLocation(p *Paragraph) Location {
	return Location{
		Type:           LocParagraph,
		Index:          p.Index,
		ParagraphIndex: p.Index,
		Page:           p.Page,
		StartLine:      p.StartLine,
		EndLine:        p.EndLine,
		Description:    fmt.Sprintf("第%d页第%d段(%d~%d行)", p.Page, p.Index+1, p.StartLine, p.EndLine),
	}
}

// RunLocation builds a location for a run, addressed by its paragraph.
func RunLocation(r *Run) Location {
	return Location{
		Type:           LocRun,
		ParagraphIndex: r.ParagraphIndex,
		Page:           r.Page,
		Description:    fmt.Sprintf("第%d页第%d段文本", r.Page, r.ParagraphIndex+1),
	}
}

// HeadingLocation builds a location for a heading paragraph.
func HeadingLocation(h *Heading, page int) Location {
	return Location{
		Type:           LocHeading,
		Level:          h.Level,
		Text:           h.Text,
		ParagraphIndex: h.ParagraphIndex,
		Page:           page,
		Description:    "标题: " + h.Text,
	}
}

// DocumentLocation builds the whole-document location.
func DocumentLocation() Location {
	return Location{Type: LocDocument, Page: 1, Description: "文档整体设置"}
}

// FigureLocation builds a location for the idx-th figure or table.
func FigureLocation(idx, page int) Location {
	return Location{
		Type:        LocFigure,
		Index:       idx,
		Page:        page,
		Description: fmt.Sprintf("第%d个图表", idx+1),
	}
}

// PageGroup is one page's worth of display items for a merged issue.
// Items holds human-readable strings with runs of three or more consecutive
// locations collapsed into a from~to summary.
type PageGroup struct {
	Page     int      `json:"page"`
	Items    []string `json:"items"`
	AllItems []string `json:"all_items"`
	Total    int      `json:"total"`
	HasMore  bool     `json:"has_more"`
}

// Issue is one reported rule violation. After merging it carries every raw
// location that contributed plus a page-grouped display list; Location is
// the single summary entry. Merging is lossless: the union of RawLocations
// across merged issues equals the pre-merge multiset.
type Issue struct {
	RuleID       string         `json:"rule_id"`
	RuleName     string         `json:"rule_name"`
	Category     string         `json:"category"`
	ErrorMessage string         `json:"error_message"`
	Suggestion   string         `json:"suggestion"`
	FixAction    string         `json:"fix_action,omitempty"`
	FixParams    map[string]any `json:"fix_params,omitempty"`
	Location     Location       `json:"location"`
	Locations    []PageGroup    `json:"locations_list,omitempty"`
	RawLocations []Location     `json:"raw_locations,omitempty"`
}

// Report is the rule engine's result for one document.
type Report struct {
	TotalIssues int     `json:"total_issues"`
	Issues      []Issue `json:"issues"`
}
