// Package rules defines the data-only rule records the engine evaluates and
// the loader that reads rule sets from YAML files. Rules are never code:
// a rule is an id, a category, a match target and a category-typed condition.
package rules

// Rule categories.
const (
	CategoryPage      = "page"
	CategoryFont      = "font"
	CategoryParagraph = "paragraph"
	CategoryHeading   = "heading"
	CategoryFigure    = "figure"
	CategoryStructure = "structure"
	CategoryOther     = "other"
)

// Match target types.
const (
	MatchDocument  = "document"
	MatchParagraph = "paragraph"
	MatchRun       = "run"
	MatchHeading   = "heading"
	MatchTable     = "table"
	MatchFigure    = "figure"
	MatchSection   = "section"
)

// Checker kinds.
const (
	CheckerDeterministic = "deterministic"
	CheckerSemantic      = "semantic"
	CheckerHybrid        = "hybrid"
)

// Structure rule ids the engine routes to the structure checker.
const (
	RuleRequiredSections   = "REQUIRED_SECTIONS_CHECK"
	RuleTOCBodyConsistency = "TOC_BODY_CONSISTENCY"
	RuleHeadingHierarchy   = "HEADING_HIERARCHY_CHECK"
)

// Rule is one format requirement, pure data. Condition is the decoded,
// category-typed variant of the raw condition map.
type Rule struct {
	ID             string         `yaml:"id" json:"id"`
	Name           string         `yaml:"name" json:"name"`
	Category       string         `yaml:"category" json:"category"`
	Match          string         `yaml:"match" json:"match"`
	Checker        string         `yaml:"checker" json:"checker"`
	ErrorMessage   string         `yaml:"error_message" json:"error_message"`
	Suggestion     string         `yaml:"suggestion" json:"suggestion"`
	PromptTemplate string         `yaml:"prompt_template" json:"prompt_template,omitempty"`
	FixAction      string         `yaml:"fix_action" json:"fix_action,omitempty"`
	FixParams      map[string]any `yaml:"fix_params" json:"fix_params,omitempty"`

	RawCondition map[string]any `yaml:"condition" json:"condition,omitempty"`
	Condition    Condition      `yaml:"-" json:"-"`
}

// IsSemantic reports whether the rule needs the semantic collaborator.
func (r *Rule) IsSemantic() bool {
	return r.Checker == CheckerSemantic || r.Checker == CheckerHybrid
}

// IsDeterministic reports whether the rule has a deterministic part.
func (r *Rule) IsDeterministic() bool {
	return r.Checker == "" || r.Checker == CheckerDeterministic || r.Checker == CheckerHybrid
}
