package revision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/ooxml"
	"github.com/google/uuid"
)

// minimalSettings is used when a container carries no settings part at all.
const minimalSettings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:settings>`

// Engine turns an approved issue list into a revised copy of the source
// document. Every invocation works on its own copy and writes to a fresh
// randomly suffixed path, so concurrent runs never collide.
type Engine struct {
	outputDir string
	author    string
	logger    *slog.Logger
}

func NewEngine(outputDir, author string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Engine{outputDir: outputDir, author: author, logger: logger}, nil
}

// Revise applies each issue's fix to a copy of srcPath and returns the path
// of the revised file. Individual fix failures are absorbed: the location
// stays unchanged and the rest of the batch still applies. The output is
// written once, after all issues have been attempted.
func (e *Engine) Revise(srcPath string, issues []docmodel.Issue) (string, error) {
	pkg, err := ooxml.OpenPackage(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}

	docTree, err := pkg.ParsePart(ooxml.DocumentPart)
	if err != nil {
		return "", fmt.Errorf("parse document part: %w", err)
	}

	if _, ok := pkg.Part(ooxml.SettingsPart); !ok {
		pkg.SetPart(ooxml.SettingsPart, []byte(minimalSettings))
	}
	settingsTree, err := pkg.ParsePart(ooxml.SettingsPart)
	if err != nil {
		return "", fmt.Errorf("parse settings part: %w", err)
	}

	reviser := NewReviser(e.author)
	if err := reviser.EnableTrackRevisions(settingsTree); err != nil {
		return "", fmt.Errorf("enable track revisions: %w", err)
	}

	paragraphs := ooxml.FindAll(docTree, "//w:body/w:p")

	for i := range issues {
		e.applyIssue(reviser, docTree, paragraphs, &issues[i])
	}

	pkg.SavePart(ooxml.DocumentPart, docTree)
	pkg.SavePart(ooxml.SettingsPart, settingsTree)

	outPath := e.outputPath(srcPath)
	if err := pkg.Save(outPath); err != nil {
		return "", fmt.Errorf("save revised document: %w", err)
	}
	return outPath, nil
}

// applyIssue resolves the issue's locations to paragraph targets and applies
// the fix to each. The pre-merge location list is preferred; a page-category
// issue applies exactly once no matter how many locations it carries.
func (e *Engine) applyIssue(reviser *Reviser, docTree *xmlquery.Node, paragraphs []*xmlquery.Node, issue *docmodel.Issue) {
	locations := issue.RawLocations
	if len(locations) == 0 {
		if issue.Location.Type == docmodel.LocMerged {
			if issue.Category == "page" {
				e.applyFix(reviser, docTree, issue, nil)
			} else {
				e.logger.Warn("skipping merged location without raw locations", "rule_id", issue.RuleID)
			}
			return
		}
		locations = []docmodel.Location{issue.Location}
	}

	if issue.Category == "page" {
		e.applyFix(reviser, docTree, issue, nil)
		return
	}

	applied := 0
	for _, loc := range locations {
		switch loc.Type {
		case docmodel.LocDocument:
			if e.applyFix(reviser, docTree, issue, nil) {
				applied++
			}

		case docmodel.LocParagraph, docmodel.LocHeading:
			idx := loc.Index
			if loc.Type == docmodel.LocHeading {
				idx = loc.ParagraphIndex
			}
			if idx < 0 || idx >= len(paragraphs) {
				e.logger.Warn("location outside document", "rule_id", issue.RuleID, "index", idx, "paragraphs", len(paragraphs))
				continue
			}
			if e.applyFix(reviser, docTree, issue, paragraphs[idx]) {
				applied++
			}
		}
	}

	if applied == 0 && issue.FixAction != "" {
		e.logger.Debug("no fix applied", "rule_id", issue.RuleID, "fix_action", issue.FixAction)
	}
}

// applyFix performs one fix action against one target. Panics and unknown
// actions degrade to a skipped location.
func (e *Engine) applyFix(reviser *Reviser, docTree *xmlquery.Node, issue *docmodel.Issue, target *xmlquery.Node) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("fix application failed", "rule_id", issue.RuleID, "fix_action", issue.FixAction, "panic", r)
			ok = false
		}
	}()

	params := issue.FixParams

	switch issue.FixAction {
	case "set_page_margin":
		reviser.SetPageMargins(docTree,
			paramFloat(params, "top_mm", 25.4),
			paramFloat(params, "bottom_mm", 25.4),
			paramFloat(params, "left_mm", 31.8),
			paramFloat(params, "right_mm", 31.8),
		)
		return true

	case "set_paragraph_indent":
		if target == nil {
			return false
		}
		reviser.SetParagraphIndent(target, paramFloat(params, "first_line_indent_chars", 2))
		return true

	case "set_heading_style":
		if target == nil {
			return false
		}
		level := headingLevelOf(target)
		spec, ok := params[fmt.Sprintf("level%d", level)].(map[string]any)
		if !ok {
			return false
		}
		reviser.SetRunStyle(target,
			paramString(spec, "font", "SimHei"),
			paramFloat(spec, "size_pt", 14),
			paramString(spec, "alignment", "left"),
			paramBool(spec, "bold", true),
		)
		return true

	case "set_run_style":
		if target == nil {
			return false
		}
		reviser.SetRunStyle(target,
			paramString(params, "chinese_font", "宋体"),
			paramFloat(params, "size_pt", 12),
			"",
			false,
		)
		return true

	case "replace_text":
		if target == nil {
			return false
		}
		return reviser.ReplaceText(target,
			paramString(params, "original", ""),
			paramString(params, "correction", ""),
		)

	case "replace_ref":
		if target == nil {
			return false
		}
		return reviser.ReplaceText(target,
			paramString(params, "original_ref", ""),
			paramString(params, "suggested_ref", ""),
		)

	case "":
		// Annotation hook reserved; no mutation without a fix action.
		return false

	default:
		e.logger.Debug("unknown fix action skipped", "rule_id", issue.RuleID, "fix_action", issue.FixAction)
		return false
	}
}

// headingLevelOf reads the heading level off the paragraph's style id,
// defaulting to 1.
func headingLevelOf(p *xmlquery.Node) int {
	pPr := ooxml.Child(p, "w:pPr")
	if pPr == nil {
		return 1
	}
	pStyle := ooxml.Child(pPr, "w:pStyle")
	if pStyle == nil {
		return 1
	}
	val := ooxml.Attr(pStyle, "w:val")
	digits := strings.TrimLeftFunc(val, func(r rune) bool { return r < '0' || r > '9' })
	if digits == "" {
		return 1
	}
	var level int
	if _, err := fmt.Sscanf(digits, "%d", &level); err != nil || level < 1 || level > 9 {
		return 1
	}
	return level
}

func (e *Engine) outputPath(srcPath string) string {
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return filepath.Join(e.outputDir, fmt.Sprintf("%s_revised_%s%s", name, suffix, ext))
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

func paramString(params map[string]any, key, fallback string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func paramBool(params map[string]any, key string, fallback bool) bool {
	if b, ok := params[key].(bool); ok {
		return b
	}
	return fallback
}
