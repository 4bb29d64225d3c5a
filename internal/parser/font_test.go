package parser

import "testing"

func TestNormalizeFontName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"宋体", "SimSun"},
		{"SimSun", "SimSun"},
		{"黑体", "SimHei"},
		{"微软雅黑", "Microsoft YaHei"},
		{"仿宋", "FangSong"},
		{"楷体", "KaiTi"},
		{"宋体, Arial", "SimSun"},
		{" 黑体 ", "SimHei"},
		{"Times New Roman", "Times New Roman"},
		{"方正小标宋简体", "方正小标宋简体"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeFontName(tc.in); got != tc.want {
			t.Errorf("NormalizeFontName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEstimateLineCount(t *testing.T) {
	if got := estimateLineCount(""); got != 1 {
		t.Errorf("empty text lines = %d, want 1", got)
	}
	if got := estimateLineCount("短文本"); got != 1 {
		t.Errorf("short text lines = %d, want 1", got)
	}

	long := make([]rune, 120)
	for i := range long {
		long[i] = '字'
	}
	if got := estimateLineCount(string(long)); got != 3 {
		t.Errorf("120-rune text lines = %d, want 3", got)
	}

	if got := estimateLineCount("一行\n两行"); got != 2 {
		t.Errorf("explicit break lines = %d, want 2", got)
	}
}

func TestContainsChinese(t *testing.T) {
	if !ContainsChinese("正文 body") {
		t.Error("mixed text not recognized as containing Chinese")
	}
	if ContainsChinese("ascii only 123") {
		t.Error("pure ASCII recognized as Chinese")
	}
}

func TestContainsEnglish(t *testing.T) {
	if !ContainsEnglish("图1 Figure") {
		t.Error("mixed text not recognized as containing English")
	}
	if ContainsEnglish("纯中文，１２３") {
		t.Error("text without ASCII letters recognized as English")
	}
}
