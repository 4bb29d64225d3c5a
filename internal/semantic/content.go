package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// Content check identifiers, used to select which stages run.
const (
	CheckSpelling  = "spell_check"
	CheckCrossRefs = "cross_ref_check"
)

// spellBatchSize is how many paragraphs go into one spelling request.
const spellBatchSize = 30

const spellSystemPrompt = `你是一个专业的中文文档校对助手。你的任务是检测文档中的错别字。

请仔细检查以下内容的错别字，包括同音字错误、形近字错误、常见输入错误和英文拼写错误。

对于每个检测到的错别字，请返回：
- paragraph_index: 段落编号（使用文本前的编号）
- original: 错误的文本
- correction: 正确的文本
- reason: 修改理由

请只返回确实存在错误的项，不要误报。如果未检测到错别字，返回空数组。
返回格式必须是有效的JSON数组。`

const crossRefSystemPrompt = `你是一个专业的文档格式检查助手。你的任务是检查文档中图表交叉引用的一致性。

请检查以下内容：
1. 文中提到的图表编号是否真实存在
2. 图表编号是否连续（无跳号）
3. 引用格式是否符合规范（如"图1-1"、"表2.1"等）

对于每个检测到的问题，请返回：
- type: 问题类型（missing_ref/invalid_format/discontinuous）
- reference: 文中的引用文本
- paragraph_index: 引用所在段落编号
- suggestion: 修改建议

返回格式必须是有效的JSON数组。`

// ContentChecker runs the content-quality stage, independent of the rule
// set: spelling and figure/table cross-reference validation.
type ContentChecker struct {
	client *Client
	logger *slog.Logger
}

func NewContentChecker(client *Client, logger *slog.Logger) *ContentChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentChecker{client: client, logger: logger}
}

// Enabled reports whether the model-backed stages can run. Cross-reference
// checking still works without a model through the deterministic fallback.
func (cc *ContentChecker) Enabled() bool {
	return cc.client != nil && cc.client.Enabled()
}

// CheckAll runs the selected content checks. A failed batch or stage only
// loses its own findings.
func (cc *ContentChecker) CheckAll(ctx context.Context, snap *docmodel.Snapshot, enabledChecks []string) []docmodel.Issue {
	selected := make(map[string]bool, len(enabledChecks))
	for _, c := range enabledChecks {
		selected[c] = true
	}

	var issues []docmodel.Issue
	if selected[CheckSpelling] && cc.Enabled() {
		issues = append(issues, cc.checkSpelling(ctx, snap)...)
	}
	if selected[CheckCrossRefs] {
		issues = append(issues, cc.checkCrossReferences(ctx, snap)...)
	}
	return issues
}

// checkSpelling asks the model to proofread the document in batches of
// paragraphs.
func (cc *ContentChecker) checkSpelling(ctx context.Context, snap *docmodel.Snapshot) []docmodel.Issue {
	var issues []docmodel.Issue
	paragraphs := snap.Paragraphs

	for start := 0; start < len(paragraphs); start += spellBatchSize {
		end := start + spellBatchSize
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		batch := paragraphs[start:end]

		prompt := fmt.Sprintf("请检查以下文本中的错别字：\n\n%s\n返回JSON格式的检测结果。只返回确实存在错误的项。",
			formatSpellBatch(batch))

		response, err := cc.client.Chat(ctx, spellSystemPrompt, prompt, 0.1)
		if err != nil {
			cc.logger.Warn("spell check batch failed", "start", start, "end", end, "error", err)
			continue
		}
		if strings.TrimSpace(response) == "" {
			continue
		}

		issues = append(issues, parseSpellResponse(response, snap)...)
	}
	return issues
}

// formatSpellBatch numbers each paragraph with its document index so the
// model's answers map straight back to paragraphs.
func formatSpellBatch(batch []docmodel.Paragraph) string {
	var b strings.Builder
	for _, p := range batch {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n", p.Index, text)
	}
	return b.String()
}

type spellFinding struct {
	ParagraphIndex int    `json:"paragraph_index"`
	Original       string `json:"original"`
	Correction     string `json:"correction"`
	Reason         string `json:"reason"`
}

func parseSpellResponse(response string, snap *docmodel.Snapshot) []docmodel.Issue {
	var findings []spellFinding
	if err := json.Unmarshal([]byte(stripCodeBlock(response)), &findings); err != nil {
		return nil
	}

	var issues []docmodel.Issue
	for _, f := range findings {
		if f.Original == "" {
			continue
		}
		target := snap.ParagraphAt(f.ParagraphIndex)
		if target == nil {
			continue
		}

		issues = append(issues, docmodel.Issue{
			RuleID:       "AI_SPELL_CHECK",
			RuleName:     "错别字检测",
			Category:     "content_quality",
			ErrorMessage: fmt.Sprintf("检测到可能的错别字：%s", f.Original),
			Suggestion:   fmt.Sprintf("建议修改为：%s", f.Correction),
			FixAction:    "replace_text",
			FixParams: map[string]any{
				"original":        f.Original,
				"correction":      f.Correction,
				"paragraph_index": f.ParagraphIndex,
			},
			Location: docmodel.Location{
				Type:           docmodel.LocParagraph,
				Index:          f.ParagraphIndex,
				ParagraphIndex: f.ParagraphIndex,
				Page:           target.Page,
				StartLine:      target.StartLine,
				EndLine:        target.EndLine,
				Description:    fmt.Sprintf("第%d页第%d行", target.Page, target.StartLine),
			},
		})
	}
	return issues
}

// reference is one figure or table mention found in body text.
type reference struct {
	Text           string
	ParagraphIndex int
	Location       string
}

var refPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[图表]\d+(?:[-－．.]\d+)*`),
	regexp.MustCompile(`图\s*\d+(?:[-－．.]\d+)*`),
	regexp.MustCompile(`表\s*\d+(?:[-－．.]\d+)*`),
}

// extractReferences finds every 图N / 表N-M style mention in the text.
func extractReferences(text string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, re := range refPatterns {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.ReplaceAll(m, " ", "")
			if !seen[m] {
				seen[m] = true
				refs = append(refs, m)
			}
		}
	}
	return refs
}

// checkCrossReferences validates body mentions of figures and tables. The
// model reviews format and continuity when available; otherwise the
// deterministic existence check runs alone.
func (cc *ContentChecker) checkCrossReferences(ctx context.Context, snap *docmodel.Snapshot) []docmodel.Issue {
	var refs []reference
	for _, p := range snap.Paragraphs {
		for _, r := range extractReferences(p.Text) {
			refs = append(refs, reference{
				Text:           r,
				ParagraphIndex: p.Index,
				Location:       fmt.Sprintf("第%d页第%d行", p.Page, p.StartLine),
			})
		}
	}
	if len(refs) == 0 {
		return nil
	}

	existingFigures := make([]string, len(snap.Figures))
	for i := range snap.Figures {
		existingFigures[i] = fmt.Sprintf("图%d", i+1)
	}
	existingTables := make([]string, len(snap.Tables))
	for i := range snap.Tables {
		existingTables[i] = fmt.Sprintf("表%d", i+1)
	}

	if cc.Enabled() {
		if issues, err := cc.modelCrossRefCheck(ctx, refs, existingFigures, existingTables); err == nil {
			return issues
		} else {
			cc.logger.Warn("cross-reference model check failed, using rule fallback", "error", err)
		}
	}

	return ruleBasedCrossRefCheck(refs, existingFigures, existingTables)
}

type crossRefFinding struct {
	Type           string `json:"type"`
	Reference      string `json:"reference"`
	ParagraphIndex int    `json:"paragraph_index"`
	Suggestion     string `json:"suggestion"`
}

func (cc *ContentChecker) modelCrossRefCheck(ctx context.Context, refs []reference, figures, tables []string) ([]docmodel.Issue, error) {
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshal references: %w", err)
	}

	prompt := fmt.Sprintf(`请检查以下文档中的图表交叉引用是否正确。

文中引用列表：
%s

实际存在的图表：
图片：%s
表格：%s

返回JSON格式的检测结果。`,
		string(refsJSON), listOrNone(figures), listOrNone(tables))

	response, err := cc.client.Chat(ctx, crossRefSystemPrompt, prompt, 0.2)
	if err != nil {
		return nil, err
	}

	var findings []crossRefFinding
	if err := json.Unmarshal([]byte(stripCodeBlock(response)), &findings); err != nil {
		return nil, fmt.Errorf("parse cross-reference response: %w", err)
	}

	var issues []docmodel.Issue
	for _, f := range findings {
		if f.Reference == "" {
			continue
		}
		issues = append(issues, crossRefIssue(f.Reference, f.ParagraphIndex, crossRefMessage(f.Type, f.Reference), f.Suggestion))
	}
	return issues, nil
}

func crossRefMessage(issueType, ref string) string {
	switch issueType {
	case "missing_ref":
		return fmt.Sprintf("引用的图表不存在：%s", ref)
	case "invalid_format":
		return fmt.Sprintf("引用格式不符合规范：%s", ref)
	case "discontinuous":
		return fmt.Sprintf("图表编号不连续：%s", ref)
	default:
		return fmt.Sprintf("交叉引用问题：%s", ref)
	}
}

// ruleBasedCrossRefCheck is the deterministic fallback: every mention must
// match an existing figure or table after dash and dot normalization.
func ruleBasedCrossRefCheck(refs []reference, figures, tables []string) []docmodel.Issue {
	existing := append(append([]string{}, figures...), tables...)

	var issues []docmodel.Issue
	for _, ref := range refs {
		normalized := strings.NewReplacer("－", "-", "．", ".").Replace(ref.Text)

		found := false
		for _, item := range existing {
			if strings.Contains(normalized, item) || strings.Contains(item, normalized) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, crossRefIssue(ref.Text, ref.ParagraphIndex,
				fmt.Sprintf("引用的图表不存在：%s", ref.Text), "请检查图表编号是否正确"))
		}
	}
	return issues
}

func crossRefIssue(ref string, paragraphIndex int, message, suggestion string) docmodel.Issue {
	if suggestion == "" {
		suggestion = "请检查图表编号是否正确"
	}
	return docmodel.Issue{
		RuleID:       "AI_CROSS_REF_CHECK",
		RuleName:     "交叉引用检查",
		Category:     "content_quality",
		ErrorMessage: message,
		Suggestion:   suggestion,
		Location: docmodel.Location{
			Type:           docmodel.LocParagraph,
			Index:          paragraphIndex,
			ParagraphIndex: paragraphIndex,
			Description:    fmt.Sprintf("第%d段：%s", paragraphIndex+1, ref),
		},
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "无"
	}
	return strings.Join(items, ", ")
}
