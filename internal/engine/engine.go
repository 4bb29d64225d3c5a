// Package engine evaluates format rules against a parsed document snapshot
// and aggregates the findings into a merged report. Deterministic rules are
// evaluated here; structure rules route to the structure checker and
// semantic rules to an injected collaborator.
package engine

import (
	"context"
	"log/slog"

	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/rules"
	"github.com/dgallion1/doccheck/internal/structure"
)

// SemanticChecker is the collaborator that evaluates rules whose conditions
// cannot be decided from formatting data alone. A failed semantic check only
// loses that rule's findings.
type SemanticChecker interface {
	Enabled() bool
	CheckRule(ctx context.Context, snap *docmodel.Snapshot, rule *rules.Rule) ([]docmodel.Issue, error)
}

// Engine runs a rule set against snapshots.
type Engine struct {
	rules    []rules.Rule
	semantic SemanticChecker
	logger   *slog.Logger
}

// New builds an engine. semantic may be nil, in which case semantic rules
// are skipped silently.
func New(ruleSet []rules.Rule, semantic SemanticChecker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: ruleSet, semantic: semantic, logger: logger}
}

// Check evaluates every rule and returns the merged report. One report entry
// exists per rule id that produced findings; each entry carries the full raw
// location list plus the page-grouped display list.
func (e *Engine) Check(ctx context.Context, snap *docmodel.Snapshot) (*docmodel.Report, error) {
	var issues []docmodel.Issue

	for i := range e.rules {
		rule := &e.rules[i]

		if rule.IsDeterministic() {
			found := e.checkRule(rule, snap)
			if len(found) > 0 {
				e.logger.Debug("rule matched", "rule_id", rule.ID, "issues", len(found))
			}
			issues = append(issues, found...)
		}

		if rule.IsSemantic() {
			if e.semantic == nil || !e.semantic.Enabled() {
				continue
			}
			found, err := e.semantic.CheckRule(ctx, snap, rule)
			if err != nil {
				e.logger.Warn("semantic check failed", "rule_id", rule.ID, "error", err)
				continue
			}
			issues = append(issues, found...)
		}
	}

	merged := mergeByRule(issues)
	return &docmodel.Report{TotalIssues: len(merged), Issues: merged}, nil
}

// checkRule evaluates one deterministic rule against the snapshot.
func (e *Engine) checkRule(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	if rule.Category == rules.CategoryStructure {
		return e.checkStructureRule(rule, snap)
	}

	switch rule.Match {
	case rules.MatchDocument, "":
		if matchDocument(rule.Condition, snap) {
			return nil
		}
		return []docmodel.Issue{newIssue(rule, docmodel.DocumentLocation())}

	case rules.MatchParagraph:
		return e.checkParagraphs(rule, snap)

	case rules.MatchRun:
		return e.checkRuns(rule, snap)

	case rules.MatchHeading:
		return e.checkHeadings(rule, snap)

	case rules.MatchSection:
		return e.checkSections(rule, snap)

	case rules.MatchTable:
		var issues []docmodel.Issue
		for i := range snap.Tables {
			t := &snap.Tables[i]
			if !matchCaption(t.Caption, t.CaptionPosition, rule.Condition) {
				issues = append(issues, newIssue(rule, docmodel.FigureLocation(t.Index, tablePage(snap, t))))
			}
		}
		return issues

	case rules.MatchFigure:
		var issues []docmodel.Issue
		for i := range snap.Figures {
			f := &snap.Figures[i]
			if !matchCaption(f.Caption, f.CaptionPosition, rule.Condition) {
				issues = append(issues, newIssue(rule, docmodel.FigureLocation(f.Index, figurePage(snap, f))))
			}
		}
		return issues
	}

	return nil
}

// checkParagraphs evaluates a paragraph-matched rule. Body formatting rules
// never apply to heading paragraphs.
func (e *Engine) checkParagraphs(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	var skip map[int]bool
	if rule.Category == rules.CategoryParagraph {
		skip = snap.HeadingIndexSet()
	}

	var issues []docmodel.Issue
	for i := range snap.Paragraphs {
		p := &snap.Paragraphs[i]
		if skip[p.Index] {
			continue
		}
		if !matchParagraph(p, rule.Condition) {
			issues = append(issues, newIssue(rule, docmodel.ParagraphLocation(p)))
		}
	}
	return issues
}

// checkRuns evaluates a run-matched rule and folds the findings up to
// paragraph level so a paragraph full of offending runs reports once.
func (e *Engine) checkRuns(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	var skip map[int]bool
	if rule.Category == rules.CategoryFont {
		skip = snap.HeadingIndexSet()
	}

	var runIssues []docmodel.Issue
	for i := range snap.Runs {
		r := &snap.Runs[i]
		if skip[r.ParagraphIndex] {
			continue
		}
		if !matchRun(r, rule.Condition) {
			runIssues = append(runIssues, newIssue(rule, docmodel.RunLocation(r)))
		}
	}
	return aggregateRunIssues(rule, runIssues, snap)
}

func (e *Engine) checkHeadings(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	var issues []docmodel.Issue
	for i := range snap.Headings {
		h := &snap.Headings[i]
		if !matchHeading(h, rule.Condition) {
			issues = append(issues, newIssue(rule, docmodel.HeadingLocation(h, headingPage(snap, h))))
		}
	}
	return issues
}

func (e *Engine) checkSections(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	var issues []docmodel.Issue
	for i := range snap.Headings {
		h := &snap.Headings[i]
		if !matchSection(h.Text, rule.Condition) {
			issues = append(issues, newIssue(rule, docmodel.HeadingLocation(h, headingPage(snap, h))))
		}
	}
	return issues
}

// checkStructureRule routes the three whole-document rule ids to the
// structure checker. The checker's issues keep their own sub-rule ids; fix
// metadata missing on a finding is inherited from the rule.
func (e *Engine) checkStructureRule(rule *rules.Rule, snap *docmodel.Snapshot) []docmodel.Issue {
	checker := structure.NewChecker(snap)

	var issues []docmodel.Issue
	switch rule.ID {
	case rules.RuleRequiredSections:
		if c, ok := rule.Condition.(rules.StructureCondition); ok && len(c.RequiredSections) > 0 {
			issues = checker.CheckRequiredSections(c.RequiredSections)
		}
	case rules.RuleTOCBodyConsistency:
		issues = checker.CheckTOCBodyConsistency()
	case rules.RuleHeadingHierarchy:
		issues = checker.CheckHeadingHierarchy()
	}

	for i := range issues {
		if issues[i].Suggestion == "" {
			issues[i].Suggestion = rule.Suggestion
		}
		if issues[i].FixAction == "" {
			issues[i].FixAction = rule.FixAction
		}
		if issues[i].FixParams == nil {
			issues[i].FixParams = rule.FixParams
		}
	}
	return issues
}

// aggregateRunIssues folds run-level findings into one paragraph-level
// finding per paragraph, preserving first-seen order and counting the runs
// that contributed.
func aggregateRunIssues(rule *rules.Rule, runIssues []docmodel.Issue, snap *docmodel.Snapshot) []docmodel.Issue {
	if len(runIssues) == 0 {
		return nil
	}

	var order []int
	counts := make(map[int]int)
	for _, iss := range runIssues {
		idx := iss.Location.ParagraphIndex
		if _, seen := counts[idx]; !seen {
			order = append(order, idx)
		}
		counts[idx]++
	}

	aggregated := make([]docmodel.Issue, 0, len(order))
	for _, idx := range order {
		loc := docmodel.Location{
			Type:        docmodel.LocParagraph,
			Index:       idx,
			Page:        1,
			StartLine:   1,
			EndLine:     1,
			Description: runParagraphDescription(idx),
			Count:       counts[idx],
		}
		if p := snap.ParagraphAt(idx); p != nil {
			loc.Page = p.Page
			loc.StartLine = p.StartLine
			loc.EndLine = p.EndLine
		}
		aggregated = append(aggregated, newIssue(rule, loc))
	}
	return aggregated
}

func newIssue(rule *rules.Rule, loc docmodel.Location) docmodel.Issue {
	msg := rule.ErrorMessage
	if msg == "" {
		msg = "格式不符合规范"
	}
	return docmodel.Issue{
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		Category:     rule.Category,
		ErrorMessage: msg,
		Suggestion:   rule.Suggestion,
		FixAction:    rule.FixAction,
		FixParams:    rule.FixParams,
		Location:     loc,
	}
}

func headingPage(snap *docmodel.Snapshot, h *docmodel.Heading) int {
	if p := snap.ParagraphAt(h.ParagraphIndex); p != nil {
		return p.Page
	}
	return 1
}

func tablePage(snap *docmodel.Snapshot, t *docmodel.Table) int {
	if p := snap.ParagraphAt(t.ParagraphIndex); p != nil {
		return p.Page
	}
	return 1
}

func figurePage(snap *docmodel.Snapshot, f *docmodel.Figure) int {
	if p := snap.ParagraphAt(f.ParagraphIndex); p != nil {
		return p.Page
	}
	return 1
}
