// Package structure validates whole-document invariants: required
// sections, consistency between the table of contents and the body, and
// heading hierarchy. Its findings share the Issue shape the rule engine
// produces so they merge into the same report.
package structure

import (
	"fmt"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// Checker evaluates structural invariants against one snapshot.
type Checker struct {
	snap *docmodel.Snapshot
}

// NewChecker wraps a snapshot for structural checks.
func NewChecker(snap *docmodel.Snapshot) *Checker {
	return &Checker{snap: snap}
}

// CheckRequiredSections reports one issue per required section name that no
// body heading matches. Matching is exact-or-bidirectional-substring on the
// normalized forms.
func (c *Checker) CheckRequiredSections(required []string) []docmodel.Issue {
	var issues []docmodel.Issue

	normalized := make([]string, 0, len(c.snap.Headings))
	for _, h := range c.snap.Headings {
		if n := NormalizeTitle(h.Text); n != "" {
			normalized = append(normalized, n)
		}
	}

	for _, section := range required {
		if matchesAny(NormalizeTitle(section), normalized) {
			continue
		}
		issues = append(issues, docmodel.Issue{
			RuleID:       "REQUIRED_SECTION_MISSING",
			RuleName:     "缺少必要章节：" + section,
			Category:     "structure",
			ErrorMessage: fmt.Sprintf("文档中未找到必要章节：%s", section),
			Suggestion:   fmt.Sprintf("请在文档中添加章节：%s", section),
			Location: docmodel.Location{
				Type:        docmodel.LocDocument,
				Page:        1,
				Description: "文档结构",
			},
		})
	}

	return issues
}

// CheckTOCBodyConsistency cross-checks the table of contents against body
// headings. A missing or empty TOC short-circuits with a single issue so a
// degenerate state does not cascade into misleading per-entry findings.
func (c *Checker) CheckTOCBodyConsistency() []docmodel.Issue {
	var issues []docmodel.Issue

	if !c.snap.TOC.Exists {
		return []docmodel.Issue{{
			RuleID:       "TOC_MISSING",
			RuleName:     "缺少目录",
			Category:     "structure",
			ErrorMessage: "文档中未找到目录",
			Suggestion:   "请添加目录",
			Location: docmodel.Location{
				Type:        docmodel.LocDocument,
				Page:        1,
				Description: "文档前部",
			},
		}}
	}

	if len(c.snap.TOC.Entries) == 0 {
		return []docmodel.Issue{{
			RuleID:       "TOC_EMPTY",
			RuleName:     "目录为空",
			Category:     "structure",
			ErrorMessage: "目录中没有条目",
			Suggestion:   "请确保目录包含所有主要章节",
			Location: docmodel.Location{
				Type:        docmodel.LocTOC,
				Page:        1,
				Description: "目录",
			},
		}}
	}

	bodyTitles := make(map[string]*docmodel.Heading)
	for i := range c.snap.Headings {
		h := &c.snap.Headings[i]
		if n := NormalizeTitle(h.Text); n != "" {
			bodyTitles[n] = h
		}
	}

	// Every TOC entry must resolve to a body heading, and the levels must
	// agree once resolved.
	for _, entry := range c.snap.TOC.Entries {
		normalized := NormalizeTitle(entry.Title)
		if normalized == "" {
			continue
		}

		match := bodyTitles[normalized]
		if match == nil {
			for n, h := range bodyTitles {
				if containsEither(normalized, n) {
					match = h
					break
				}
			}
		}

		if match == nil {
			issues = append(issues, docmodel.Issue{
				RuleID:       "TOC_ENTRY_NOT_FOUND",
				RuleName:     "目录条目在正文中不存在",
				Category:     "structure",
				ErrorMessage: fmt.Sprintf("目录中的\"%s\"在正文中未找到对应标题", entry.Title),
				Suggestion:   fmt.Sprintf("请检查目录，确保\"%s\"在正文中存在对应的标题", entry.Title),
				Location: docmodel.Location{
					Type:        docmodel.LocTOC,
					Page:        1,
					Description: "目录条目：" + entry.Title,
				},
			})
			continue
		}

		if entry.Level != match.Level {
			issues = append(issues, docmodel.Issue{
				RuleID:       "TOC_LEVEL_MISMATCH",
				RuleName:     "目录层级与正文不一致",
				Category:     "structure",
				ErrorMessage: fmt.Sprintf("目录中的\"%s\"层级(%d级)与正文中的层级(%d级)不一致", entry.Title, entry.Level, match.Level),
				Suggestion:   fmt.Sprintf("请检查目录和正文中\"%s\"的层级设置，确保一致", entry.Title),
				Location: docmodel.Location{
					Type:           docmodel.LocHeading,
					Text:           entry.Title,
					ParagraphIndex: match.ParagraphIndex,
					Page:           c.headingPage(match.ParagraphIndex),
					Description:    "标题: " + match.Text,
				},
			})
		}
	}

	// Every level-1 body heading must appear in the TOC.
	tocNormalized := make([]string, 0, len(c.snap.TOC.Entries))
	for _, entry := range c.snap.TOC.Entries {
		if n := NormalizeTitle(entry.Title); n != "" {
			tocNormalized = append(tocNormalized, n)
		}
	}
	for i := range c.snap.Headings {
		h := &c.snap.Headings[i]
		if h.Level != 1 || h.Text == "" {
			continue
		}
		if matchesAny(NormalizeTitle(h.Text), tocNormalized) {
			continue
		}
		issues = append(issues, docmodel.Issue{
			RuleID:       "HEADING_NOT_IN_TOC",
			RuleName:     "正文标题未出现在目录中",
			Category:     "structure",
			ErrorMessage: fmt.Sprintf("正文中的一级标题\"%s\"未出现在目录中", h.Text),
			Suggestion:   fmt.Sprintf("请在目录中添加\"%s\"", h.Text),
			Location: docmodel.Location{
				Type:           docmodel.LocHeading,
				Text:           h.Text,
				ParagraphIndex: h.ParagraphIndex,
				Page:           c.headingPage(h.ParagraphIndex),
				Description:    "标题: " + h.Text,
			},
		})
	}

	return issues
}

// CheckHeadingHierarchy reports headings that jump more than one level
// deeper than their predecessor. A new level-1 heading always starts a
// fresh top-level section and is never a jump.
func (c *Checker) CheckHeadingHierarchy() []docmodel.Issue {
	var issues []docmodel.Issue
	headings := c.snap.Headings
	if len(headings) < 2 {
		return issues
	}

	for i := 1; i < len(headings); i++ {
		prev := headings[i-1].Level
		curr := headings[i].Level
		if curr == 1 {
			continue
		}
		if curr > prev+1 {
			issues = append(issues, docmodel.Issue{
				RuleID:       "HEADING_LEVEL_JUMP",
				RuleName:     "标题层级跳跃",
				Category:     "structure",
				ErrorMessage: fmt.Sprintf("标题层级从%d级跳转到%d级，中间缺少%d级标题", prev, curr, prev+1),
				Suggestion:   fmt.Sprintf("请在\"%s\"和\"%s\"之间添加%d级标题", headings[i-1].Text, headings[i].Text, prev+1),
				Location: docmodel.Location{
					Type:           docmodel.LocHeading,
					Text:           headings[i].Text,
					ParagraphIndex: headings[i].ParagraphIndex,
					Page:           c.headingPage(headings[i].ParagraphIndex),
					Description:    "标题: " + headings[i].Text,
				},
			})
		}
	}

	return issues
}

func (c *Checker) headingPage(paragraphIndex int) int {
	if p := c.snap.ParagraphAt(paragraphIndex); p != nil {
		return p.Page
	}
	return 1
}

func matchesAny(target string, candidates []string) bool {
	if target == "" {
		return false
	}
	for _, cand := range candidates {
		if containsEither(target, cand) {
			return true
		}
	}
	return false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || containsSub(a, b) || containsSub(b, a)
}
