package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{"plain text", "契約締結", []Segment{{Text: "契約締結"}}},
		{"leading emphasis", "**【原則】** 検討してください", []Segment{
			{Text: "【原則】", Emphasis: true},
			{Text: " 検討してください"},
		}},
		{"two emphasis runs", "a **b** c **d**", []Segment{
			{Text: "a "},
			{Text: "b", Emphasis: true},
			{Text: " c "},
			{Text: "d", Emphasis: true},
		}},
		{"unpaired marker is literal", "a **b", []Segment{{Text: "a **b"}}},
		{"empty emphasis", "****", []Segment{{Text: "", Emphasis: true}}},
		{"empty input", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Segments(tt.in)); diff != "" {
				t.Errorf("Segments(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	t.Run("emphasis becomes strong", func(t *testing.T) {
		assert.Equal(t, "理由書の添付は<strong>不要</strong>です。", HTML("理由書の添付は**不要**です。"))
	})

	t.Run("other markup is escaped, never interpreted", func(t *testing.T) {
		got := HTML(`<script>alert(1)</script> **<b>x</b>** _y_`)
		assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt; <strong>&lt;b&gt;x&lt;/b&gt;</strong> _y_", got)
	})
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "【原則】 一般競争入札を検討", Plain("**【原則】** **一般競争入札**を検討"))
}

func TestYen(t *testing.T) {
	tests := map[string]string{
		"0":         "0 円",
		"50000":     "50,000 円",
		"2000000":   "2,000,000 円",
		"2000100":   "2,000,100 円",
		"123.4567":  "123.457 円",
		"999":       "999 円",
		"1000":      "1,000 円",
		"-12345678": "-12,345,678 円",
	}
	for in, want := range tests {
		assert.Equal(t, want, Yen(decimal.RequireFromString(in)), in)
	}
}
