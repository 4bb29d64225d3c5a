package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleRuleSet = `
rules:
  - id: PAGE_MARGIN
    name: 页边距检查
    category: page
    match: document
    condition:
      top_mm: 25.4
      bottom_mm: 25.4
      left_mm: 31.8
      right_mm: 31.8
    error_message: 页边距不符合要求
    suggestion: 将页边距调整为规定值
    fix_action: set_page_margin
    fix_params:
      top_mm: 25.4
      bottom_mm: 25.4
      left_mm: 31.8
      right_mm: 31.8
  - id: BODY_FONT
    name: 正文字体检查
    category: font
    match: run
    condition:
      chinese_font: 宋体
      chinese_size_pt: 12
  - id: HEADING_STYLE
    name: 标题样式检查
    category: heading
    match: heading
    condition:
      level1:
        font: 黑体
        size_pt: 16
        bold: true
        alignment: center
  - id: REQUIRED_SECTIONS_CHECK
    name: 必需章节检查
    category: structure
    condition:
      required_sections: [摘要, 结论, 参考文献]
  - id: TERMINOLOGY_CHECK
    name: 术语一致性检查
    category: other
    checker: semantic
    prompt_template: 检查以下段落的术语一致性：{paragraphs}
`

func TestParse_FullRuleSet(t *testing.T) {
	ruleSet, err := Parse([]byte(sampleRuleSet))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ruleSet) != 5 {
		t.Fatalf("got %d rules, want 5", len(ruleSet))
	}

	page := ruleSet[0]
	cond, ok := page.Condition.(PageCondition)
	if !ok {
		t.Fatalf("page condition type = %T", page.Condition)
	}
	if cond.TopMM == nil || *cond.TopMM != 25.4 {
		t.Errorf("top_mm = %v", cond.TopMM)
	}
	if cond.ToleranceMM != 0.5 {
		t.Errorf("default tolerance = %v, want 0.5", cond.ToleranceMM)
	}
	if page.FixAction != "set_page_margin" || page.FixParams["left_mm"] == nil {
		t.Error("fix action/params not carried")
	}

	font := ruleSet[1]
	fc, ok := font.Condition.(FontCondition)
	if !ok {
		t.Fatalf("font condition type = %T", font.Condition)
	}
	if fc.ChineseFont != "宋体" || fc.ChineseSizePt == nil || *fc.ChineseSizePt != 12 {
		t.Errorf("font condition = %+v", fc)
	}

	heading := ruleSet[2]
	hc, ok := heading.Condition.(HeadingCondition)
	if !ok {
		t.Fatalf("heading condition type = %T", heading.Condition)
	}
	spec, ok := hc.Levels[1]
	if !ok {
		t.Fatal("level1 spec missing")
	}
	if spec.Font != "黑体" || spec.SizePt == nil || *spec.SizePt != 16 ||
		spec.Bold == nil || !*spec.Bold || spec.Alignment != "center" {
		t.Errorf("level1 spec = %+v", spec)
	}

	structure := ruleSet[3]
	sc, ok := structure.Condition.(StructureCondition)
	if !ok {
		t.Fatalf("structure condition type = %T", structure.Condition)
	}
	if len(sc.RequiredSections) != 3 || sc.RequiredSections[2] != "参考文献" {
		t.Errorf("required sections = %v", sc.RequiredSections)
	}

	semantic := ruleSet[4]
	if !semantic.IsSemantic() || semantic.IsDeterministic() {
		t.Error("semantic checker flags wrong")
	}
	if _, ok := semantic.Condition.(GenericCondition); !ok {
		t.Errorf("other-category condition type = %T", semantic.Condition)
	}
}

func TestParse_Defaults(t *testing.T) {
	ruleSet, err := Parse([]byte(`
rules:
  - id: MINIMAL
    name: 最小规则
    category: other
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := ruleSet[0]
	if r.Match != MatchDocument {
		t.Errorf("default match = %q", r.Match)
	}
	if r.Checker != CheckerDeterministic {
		t.Errorf("default checker = %q", r.Checker)
	}
	if !r.IsDeterministic() || r.IsSemantic() {
		t.Error("default checker flags wrong")
	}
}

func TestParse_RejectsBadRecords(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", "rules:\n  - name: 无编号\n    category: page\n"},
		{"empty name", "rules:\n  - id: X\n    name: \"\"\n    category: page\n"},
		{"unknown category", "rules:\n  - id: X\n    name: 规则\n    category: banana\n"},
		{"unknown match", "rules:\n  - id: X\n    name: 规则\n    category: page\n    match: cell\n"},
		{"unknown checker", "rules:\n  - id: X\n    name: 规则\n    category: page\n    checker: oracle\n"},
		{"empty set", "rules: []\n"},
		{"not yaml", "{{{{"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(sampleRuleSet), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	ruleSet, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ruleSet) != 5 {
		t.Errorf("got %d rules", len(ruleSet))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read rule set") {
		t.Fatalf("err = %v", err)
	}
}

func TestDecodeCondition_ToleranceOverride(t *testing.T) {
	cond, err := DecodeCondition(CategoryPage, map[string]any{"top_mm": 20, "tolerance_mm": 1.5})
	if err != nil {
		t.Fatalf("DecodeCondition: %v", err)
	}
	pc := cond.(PageCondition)
	if pc.ToleranceMM != 1.5 {
		t.Errorf("tolerance = %v", pc.ToleranceMM)
	}
	// Integer YAML values must still decode as floats.
	if pc.TopMM == nil || *pc.TopMM != 20 {
		t.Errorf("top_mm = %v", pc.TopMM)
	}
}
