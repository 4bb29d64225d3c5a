package semantic

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

func TestExtractReferences(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"如图1-1所示，系统分为三层。", []string{"图1-1"}},
		{"参见表2.1和表2.2的对比。", []string{"表2.1", "表2.2"}},
		{"图 3 展示了流程。", []string{"图3"}},
		{"没有任何引用的段落。", nil},
		{"图1与图1重复提及。", []string{"图1"}},
	}
	for _, tc := range cases {
		got := extractReferences(tc.text)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("extractReferences(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestRuleBasedCrossRefCheck(t *testing.T) {
	refs := []reference{
		{Text: "图1", ParagraphIndex: 2},
		{Text: "图5", ParagraphIndex: 7},
		{Text: "表1", ParagraphIndex: 9},
	}
	issues := ruleBasedCrossRefCheck(refs, []string{"图1", "图2"}, []string{"表1"})

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	iss := issues[0]
	if iss.RuleID != "AI_CROSS_REF_CHECK" {
		t.Errorf("rule id = %q", iss.RuleID)
	}
	if !strings.Contains(iss.ErrorMessage, "图5") {
		t.Errorf("message = %q, want mention of 图5", iss.ErrorMessage)
	}
	if iss.Location.ParagraphIndex != 7 {
		t.Errorf("paragraph index = %d, want 7", iss.Location.ParagraphIndex)
	}
}

func TestRuleBasedCrossRefCheck_NormalizesFullWidthDash(t *testing.T) {
	refs := []reference{{Text: "图1－1", ParagraphIndex: 0}}
	issues := ruleBasedCrossRefCheck(refs, []string{"图1-1"}, nil)
	if len(issues) != 0 {
		t.Fatalf("full-width dash variant flagged: %+v", issues)
	}
}

func TestParseSpellResponse(t *testing.T) {
	snap := &docmodel.Snapshot{
		Paragraphs: []docmodel.Paragraph{
			{Index: 0, Text: "第一段", Page: 1, StartLine: 1, EndLine: 1},
			{Index: 1, Text: "必需注意的事项", Page: 1, StartLine: 2, EndLine: 2},
		},
	}
	response := `[{"paragraph_index":1,"original":"必需","correction":"必须","reason":"语境应为义务"}]`

	issues := parseSpellResponse(response, snap)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	iss := issues[0]
	if iss.RuleID != "AI_SPELL_CHECK" || iss.FixAction != "replace_text" {
		t.Errorf("issue = %+v", iss)
	}
	if iss.FixParams["original"] != "必需" || iss.FixParams["correction"] != "必须" {
		t.Errorf("fix params = %+v", iss.FixParams)
	}
	if iss.Location.ParagraphIndex != 1 || iss.Location.Page != 1 {
		t.Errorf("location = %+v", iss.Location)
	}
}

func TestParseSpellResponse_OutOfRangeParagraphDropped(t *testing.T) {
	snap := &docmodel.Snapshot{
		Paragraphs: []docmodel.Paragraph{{Index: 0, Text: "唯一段落", Page: 1}},
	}
	response := `[{"paragraph_index":9,"original":"错","correction":"对"}]`

	if issues := parseSpellResponse(response, snap); len(issues) != 0 {
		t.Fatalf("out-of-range finding kept: %+v", issues)
	}
}

func TestParseSpellResponse_GarbageIgnored(t *testing.T) {
	snap := &docmodel.Snapshot{}
	if issues := parseSpellResponse("抱歉，我无法处理。", snap); len(issues) != 0 {
		t.Fatalf("non-JSON response produced issues: %+v", issues)
	}
}

func TestFormatSpellBatch(t *testing.T) {
	batch := []docmodel.Paragraph{
		{Index: 30, Text: "第一段内容"},
		{Index: 31, Text: "   "},
		{Index: 32, Text: "第三段内容"},
	}
	got := formatSpellBatch(batch)
	want := "[30] 第一段内容\n[32] 第三段内容\n"
	if got != want {
		t.Errorf("batch text = %q, want %q", got, want)
	}
}

func TestCheckAll_CrossRefFallbackWithoutModel(t *testing.T) {
	cc := NewContentChecker(nil, nil)
	snap := &docmodel.Snapshot{
		Paragraphs: []docmodel.Paragraph{{Index: 0, Text: "如图2所示", Page: 1, StartLine: 1}},
		Figures:    []docmodel.Figure{{Index: 0}},
	}

	issues := cc.CheckAll(t.Context(), snap, []string{CheckSpelling, CheckCrossRefs})
	if len(issues) != 1 || issues[0].RuleID != "AI_CROSS_REF_CHECK" {
		t.Fatalf("issues = %+v, want one cross-reference finding", issues)
	}
}
