package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/rules"
)

// promptParagraphLimit caps how many paragraphs go into a rule prompt so
// long documents stay inside the context window.
const promptParagraphLimit = 50

// promptParagraphMaxLen truncates individual paragraph texts in prompts.
const promptParagraphMaxLen = 200

// RuleChecker evaluates rules whose prompt_template asks the model to judge
// the document. It satisfies the engine's SemanticChecker interface.
type RuleChecker struct {
	client *Client
	logger *slog.Logger
}

func NewRuleChecker(client *Client, logger *slog.Logger) *RuleChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleChecker{client: client, logger: logger}
}

// Enabled reports whether semantic rule checking can run.
func (rc *RuleChecker) Enabled() bool {
	return rc.client != nil && rc.client.Enabled()
}

// CheckRule renders the rule's prompt template against the snapshot, asks
// the model, and converts its findings to issues. Rules without a template
// produce nothing.
func (rc *RuleChecker) CheckRule(ctx context.Context, snap *docmodel.Snapshot, rule *rules.Rule) ([]docmodel.Issue, error) {
	if rule.PromptTemplate == "" {
		rc.logger.Warn("semantic rule has no prompt template", "rule_id", rule.ID)
		return nil, nil
	}

	prompt := renderPrompt(rule.PromptTemplate, snap)
	response, err := rc.client.Chat(ctx, ruleSystemPrompt, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	return parseRuleResponse(response, rule), nil
}

const ruleSystemPrompt = `你是一个专业的文档格式检查助手。请根据用户的要求检查文档内容，` +
	`并以JSON数组形式返回检测到的问题。每个问题包含error_message、suggestion和location字段。` +
	`如果未检测到问题，返回空数组。`

// renderPrompt substitutes the template's placeholders with document
// context: {doc_info}, {paragraphs}, {headings}, {paragraphs_count},
// {headings_count}.
func renderPrompt(template string, snap *docmodel.Snapshot) string {
	info, _ := json.Marshal(map[string]any{
		"filename":         snap.Info.Filename,
		"total_paragraphs": len(snap.Paragraphs),
		"total_headings":   len(snap.Headings),
	})

	var paras strings.Builder
	for i, p := range snap.Paragraphs {
		if i >= promptParagraphLimit {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, p.Text)
		if len(line) > promptParagraphMaxLen {
			line = line[:promptParagraphMaxLen]
		}
		paras.WriteString(line)
		paras.WriteByte('\n')
	}

	var heads strings.Builder
	for _, h := range snap.Headings {
		heads.WriteString(strings.Repeat("#", h.Level))
		heads.WriteByte(' ')
		heads.WriteString(h.Text)
		heads.WriteByte('\n')
	}

	r := strings.NewReplacer(
		"{doc_info}", string(info),
		"{paragraphs}", paras.String(),
		"{headings}", heads.String(),
		"{paragraphs_count}", fmt.Sprintf("%d", len(snap.Paragraphs)),
		"{headings_count}", fmt.Sprintf("%d", len(snap.Headings)),
	)
	return r.Replace(template)
}

// ruleFinding is the shape the model is asked to return per problem.
type ruleFinding struct {
	ErrorMessage string `json:"error_message"`
	Suggestion   string `json:"suggestion"`
	Description  string `json:"description"`
	Location     *struct {
		Type           string `json:"type"`
		ParagraphIndex int    `json:"paragraph_index"`
		Page           int    `json:"page_number"`
		Description    string `json:"description"`
	} `json:"location"`
}

// parseRuleResponse converts model output to issues. Arrays are taken as-is;
// objects are unwrapped from an issues/results envelope or treated as a
// single finding. Unparseable output yields nothing.
func parseRuleResponse(response string, rule *rules.Rule) []docmodel.Issue {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil
	}

	var findings []ruleFinding
	if err := json.Unmarshal([]byte(response), &findings); err != nil {
		var envelope struct {
			Issues  []ruleFinding `json:"issues"`
			Results []ruleFinding `json:"results"`
		}
		if err := json.Unmarshal([]byte(response), &envelope); err != nil {
			return nil
		}
		findings = envelope.Issues
		if len(findings) == 0 {
			findings = envelope.Results
		}
		if len(findings) == 0 {
			var single ruleFinding
			if err := json.Unmarshal([]byte(response), &single); err == nil &&
				(single.ErrorMessage != "" || single.Suggestion != "") {
				findings = []ruleFinding{single}
			}
		}
	}

	issues := make([]docmodel.Issue, 0, len(findings))
	for _, f := range findings {
		loc := docmodel.Location{Type: docmodel.LocDocument, Description: "文档整体"}
		if f.Location != nil {
			loc = docmodel.Location{
				Type:           f.Location.Type,
				ParagraphIndex: f.Location.ParagraphIndex,
				Index:          f.Location.ParagraphIndex,
				Page:           f.Location.Page,
				Description:    f.Location.Description,
			}
			if loc.Type == "" {
				loc.Type = docmodel.LocDocument
			}
		} else if f.Description != "" {
			loc.Description = f.Description
		}

		msg := f.ErrorMessage
		if msg == "" {
			msg = rule.ErrorMessage
		}
		if msg == "" {
			msg = "格式可能存在问题"
		}
		suggestion := f.Suggestion
		if suggestion == "" {
			suggestion = rule.Suggestion
		}

		issues = append(issues, docmodel.Issue{
			RuleID:       rule.ID,
			RuleName:     rule.Name,
			Category:     rule.Category,
			ErrorMessage: msg,
			Suggestion:   suggestion,
			Location:     loc,
		})
	}
	return issues
}
