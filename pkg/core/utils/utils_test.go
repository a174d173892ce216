package utils

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type doc struct {
	Ticker string             `json:"ticker"`
	Values map[string]float64 `json:"values"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantStrategy ParseStrategy
	}{
		{"Strict JSON", `{"ticker":"GOOG","values":{"Total Revenue":100}}`, StrategyStrict},
		{"Trailing comma", `{"ticker":"GOOG","values":{"Total Revenue":100,},}`, StrategyRepaired},
		{"Single quotes", `{'ticker':'GOOG','values':{'Total Revenue':100}}`, StrategyRepaired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d doc
			_, strategy, err := SmartParse(tt.input, &d)
			if err != nil {
				t.Fatalf("SmartParse: %v", err)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %s, want %s", strategy, tt.wantStrategy)
			}
			if d.Ticker != "GOOG" || d.Values["Total Revenue"] != 100 {
				t.Errorf("decoded %+v", d)
			}
		})
	}
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON("{\n  # comment\n  ticker: GOOG\n  values: {\"Total Revenue\": 100}\n}")
	if err != nil {
		t.Fatalf("ParseHJSON: %v", err)
	}
	if !strings.Contains(out, `"ticker":"GOOG"`) {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestRenderHTML_Table(t *testing.T) {
	md := "| Item | 2024 |\n|---|---:|\n| Total Revenue | 133.10 |\n"
	out, err := RenderHTML(md)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if n := dom.Find("table tbody tr").Length(); n != 1 {
		t.Errorf("expected 1 body row, got %d in %s", n, out)
	}
	if got := strings.TrimSpace(dom.Find("tbody td").Eq(1).Text()); got != "133.10" {
		t.Errorf("cell = %q, want 133.10", got)
	}
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct{ in, want string }{
		{"```markdown\n# Title\n```", "# Title"},
		{"```\nbody\n```", "body"},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		if got := CleanMarkdown(tt.in); got != tt.want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeTableCell(t *testing.T) {
	if got := EscapeTableCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("EscapeTableCell = %q", got)
	}
}
