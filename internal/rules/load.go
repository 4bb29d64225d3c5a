package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ruleSchema validates the flat rule record shape before decoding. Higher
// level authoring formats are translated elsewhere; the loader only accepts
// the final record form.
const ruleSchema = `{
  "type": "object",
  "required": ["id", "name", "category"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "category": {
      "type": "string",
      "enum": ["page", "font", "paragraph", "heading", "figure", "structure", "other"]
    },
    "match": {
      "type": "string",
      "enum": ["document", "paragraph", "run", "heading", "table", "figure", "section"]
    },
    "checker": {
      "type": "string",
      "enum": ["deterministic", "semantic", "hybrid"]
    },
    "condition": {"type": "object"},
    "error_message": {"type": "string"},
    "suggestion": {"type": "string"},
    "prompt_template": {"type": "string"},
    "fix_action": {"type": "string"},
    "fix_params": {"type": "object"}
  }
}`

// ruleSet is the YAML file shape.
type ruleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads and validates a rule set file.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML rule set, validates every record against the rule
// schema, and decodes each raw condition into its category variant.
func Parse(data []byte) ([]Rule, error) {
	var set ruleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	if len(set.Rules) == 0 {
		return nil, fmt.Errorf("rule set contains no rules")
	}

	schema := gojsonschema.NewStringLoader(ruleSchema)
	for i := range set.Rules {
		r := &set.Rules[i]

		if err := validateRule(schema, r); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.ID, err)
		}
		if r.Match == "" {
			r.Match = MatchDocument
		}
		if r.Checker == "" {
			r.Checker = CheckerDeterministic
		}
		if r.RawCondition == nil {
			r.RawCondition = map[string]any{}
		}

		cond, err := DecodeCondition(r.Category, r.RawCondition)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): decode condition: %w", i, r.ID, err)
		}
		r.Condition = cond
	}

	return set.Rules, nil
}

func validateRule(schema gojsonschema.JSONLoader, r *Rule) error {
	doc := map[string]any{
		"id":       r.ID,
		"name":     r.Name,
		"category": r.Category,
	}
	if r.Match != "" {
		doc["match"] = r.Match
	}
	if r.Checker != "" {
		doc["checker"] = r.Checker
	}
	if r.RawCondition != nil {
		doc["condition"] = r.RawCondition
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("invalid rule: %s", strings.Join(details, "; "))
}
