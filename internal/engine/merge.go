package engine

import (
	"fmt"
	"sort"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// maxDisplayItems caps the per-page display list; the full list stays
// available alongside it.
const maxDisplayItems = 20

// mergeByRule groups findings by rule id, preserving first-seen rule order.
// Each merged issue keeps every raw location, a page-grouped display list
// with consecutive runs collapsed, and a count-only summary location.
// Already-merged issues contribute their raw locations, so merging merged
// output changes nothing.
func mergeByRule(issues []docmodel.Issue) []docmodel.Issue {
	if len(issues) == 0 {
		return nil
	}

	var order []string
	grouped := make(map[string]*docmodel.Issue)
	locations := make(map[string][]docmodel.Location)

	for i := range issues {
		iss := &issues[i]
		if _, ok := grouped[iss.RuleID]; !ok {
			head := *iss
			grouped[iss.RuleID] = &head
			order = append(order, iss.RuleID)
		}
		if len(iss.RawLocations) > 0 {
			locations[iss.RuleID] = append(locations[iss.RuleID], iss.RawLocations...)
		} else {
			locations[iss.RuleID] = append(locations[iss.RuleID], iss.Location)
		}
	}

	merged := make([]docmodel.Issue, 0, len(order))
	for _, id := range order {
		out := *grouped[id]
		raw := locations[id]
		out.Location = summaryLocation(raw)
		out.Locations = buildPageGroups(raw)
		out.RawLocations = raw
		merged = append(merged, out)
	}
	return merged
}

func summaryLocation(locs []docmodel.Location) docmodel.Location {
	if len(locs) == 0 {
		return docmodel.Location{Type: "unknown", Description: "未知位置"}
	}
	return docmodel.Location{
		Type:        docmodel.LocMerged,
		Description: fmt.Sprintf("共%d处位置", len(locs)),
		Count:       len(locs),
	}
}

// buildPageGroups groups locations by page and renders each page's items as
// display strings, collapsing runs of three or more consecutive targets.
func buildPageGroups(locs []docmodel.Location) []docmodel.PageGroup {
	if len(locs) == 0 {
		return nil
	}

	pages := make(map[int][]docmodel.Location)
	for _, loc := range locs {
		page := loc.Page
		if page == 0 {
			page = 1
		}
		pages[page] = append(pages[page], loc)
	}

	pageNums := make([]int, 0, len(pages))
	for page := range pages {
		pageNums = append(pageNums, page)
	}
	sort.Ints(pageNums)

	groups := make([]docmodel.PageGroup, 0, len(pageNums))
	for _, page := range pageNums {
		pageLocs := pages[page]

		var runLocs, paraLocs, figLocs, otherLocs []docmodel.Location
		for _, loc := range pageLocs {
			switch loc.Type {
			case docmodel.LocRun:
				runLocs = append(runLocs, loc)
			case docmodel.LocParagraph:
				paraLocs = append(paraLocs, loc)
			case docmodel.LocFigure:
				figLocs = append(figLocs, loc)
			default:
				otherLocs = append(otherLocs, loc)
			}
		}

		var all []string
		all = append(all, collapseRuns(runLocs)...)
		all = append(all, collapseParagraphs(paraLocs)...)
		all = append(all, collapseFigures(figLocs)...)
		for _, loc := range otherLocs {
			all = append(all, loc.Description)
		}

		display := all
		hasMore := false
		if len(all) > maxDisplayItems {
			display = all[:maxDisplayItems]
			hasMore = true
		}

		groups = append(groups, docmodel.PageGroup{
			Page:     page,
			Items:    display,
			AllItems: all,
			Total:    len(pageLocs),
			HasMore:  hasMore,
		})
	}
	return groups
}

// collapseRuns renders run locations by paragraph, deduplicated, with runs
// of three or more consecutive paragraphs shown as a range.
func collapseRuns(locs []docmodel.Location) []string {
	unique := dedupeSorted(locs, func(l docmodel.Location) int { return l.ParagraphIndex })
	if len(unique) == 0 {
		return nil
	}

	var out []string
	for i := 0; i < len(unique); {
		start := unique[i].ParagraphIndex
		j := i + 1
		for j < len(unique) && unique[j].ParagraphIndex == start+(j-i) {
			j++
		}
		if j-i >= 3 {
			out = append(out, fmt.Sprintf("第%d~%d段", start+1, unique[j-1].ParagraphIndex+1))
		} else {
			for k := i; k < j; k++ {
				out = append(out, fmt.Sprintf("第%d段", unique[k].ParagraphIndex+1))
			}
		}
		i = j
	}
	return out
}

// collapseParagraphs renders paragraph locations with line ranges. A run
// collapses only while both the paragraph indices and the line numbers stay
// contiguous.
func collapseParagraphs(locs []docmodel.Location) []string {
	unique := dedupeSorted(locs, func(l docmodel.Location) int { return l.Index })
	if len(unique) == 0 {
		return nil
	}

	var out []string
	for i := 0; i < len(unique); {
		start := unique[i].Index
		startLine := lineOr(unique[i].StartLine, 1)
		endLine := lineOr(unique[i].EndLine, startLine)
		j := i + 1
		for j < len(unique) {
			next := unique[j]
			nextStart := lineOr(next.StartLine, 1)
			if next.Index == start+(j-i) && nextStart == endLine+1 {
				endLine = lineOr(next.EndLine, nextStart)
				j++
			} else {
				break
			}
		}

		if j-i >= 3 {
			end := unique[j-1].Index
			if startLine == endLine {
				out = append(out, fmt.Sprintf("第%d~%d段(第%d行)", start+1, end+1, startLine))
			} else {
				out = append(out, fmt.Sprintf("第%d~%d段(第%d~%d行)", start+1, end+1, startLine, endLine))
			}
		} else {
			for k := i; k < j; k++ {
				idx := unique[k].Index
				s := lineOr(unique[k].StartLine, 1)
				e := lineOr(unique[k].EndLine, s)
				if s == e {
					out = append(out, fmt.Sprintf("第%d段(第%d行)", idx+1, s))
				} else {
					out = append(out, fmt.Sprintf("第%d段(%d~%d行)", idx+1, s, e))
				}
			}
		}
		i = j
	}
	return out
}

// collapseFigures renders figure/table locations by index.
func collapseFigures(locs []docmodel.Location) []string {
	unique := dedupeSorted(locs, func(l docmodel.Location) int { return l.Index })
	if len(unique) == 0 {
		return nil
	}

	var out []string
	for i := 0; i < len(unique); {
		start := unique[i].Index
		j := i + 1
		for j < len(unique) && unique[j].Index == start+(j-i) {
			j++
		}
		if j-i >= 3 {
			out = append(out, fmt.Sprintf("第%d~%d个图表", start+1, unique[j-1].Index+1))
		} else {
			for k := i; k < j; k++ {
				out = append(out, fmt.Sprintf("第%d个图表", unique[k].Index+1))
			}
		}
		i = j
	}
	return out
}

// dedupeSorted sorts locations by key and drops later duplicates.
func dedupeSorted(locs []docmodel.Location, key func(docmodel.Location) int) []docmodel.Location {
	if len(locs) == 0 {
		return nil
	}
	sorted := make([]docmodel.Location, len(locs))
	copy(sorted, locs)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	seen := make(map[int]bool, len(sorted))
	out := sorted[:0]
	for _, loc := range sorted {
		k := key(loc)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, loc)
	}
	return out
}

func lineOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func runParagraphDescription(idx int) string {
	return fmt.Sprintf("第%d段", idx+1)
}
