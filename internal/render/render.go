// Package render turns determination text into presentable output. The only
// markup recognized is the **emphasis** delimiter; everything else is literal
// text and is escaped when producing HTML.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var emphasisPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Segment is a run of text, emphasized or not.
type Segment struct {
	Text     string
	Emphasis bool
}

// Segments splits text on **...** pairs. Unpaired markers stay literal.
func Segments(text string) []Segment {
	var out []Segment
	last := 0
	for _, m := range emphasisPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, Segment{Text: text[last:m[0]]})
		}
		out = append(out, Segment{Text: text[m[2]:m[3]], Emphasis: true})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}

// HTML renders text with emphasis as <strong>. All other characters are escaped.
func HTML(text string) string {
	var b strings.Builder
	for _, s := range Segments(text) {
		if s.Emphasis {
			b.WriteString("<strong>")
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</strong>")
			continue
		}
		b.WriteString(html.EscapeString(s.Text))
	}
	return b.String()
}

// Plain drops the emphasis markers.
func Plain(text string) string {
	var b strings.Builder
	for _, s := range Segments(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Yen formats a yen amount with thousands separators and up to three
// fraction digits, e.g. "1,500,000 円".
func Yen(d decimal.Decimal) string {
	s := d.Round(3).String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	b.WriteString(" 円")
	return b.String()
}
