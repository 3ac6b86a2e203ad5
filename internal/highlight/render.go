package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/veridict/veridict/internal/model"
)

// namedColors maps the palette's human-friendly names to terminal-safe
// hex values. Hex values in the palette pass through unchanged.
var namedColors = map[string]string{
	"red":    "#e05252",
	"orange": "#e09952",
	"yellow": "#e0d252",
	"green":  "#52b788",
	"blue":   "#5285e0",
	"white":  "#f0f0f0",
}

func resolveColor(name string) string {
	if hex, ok := namedColors[strings.ToLower(name)]; ok {
		return hex
	}
	return name
}

// RenderANSI renders the highlight map for a terminal, one styled
// sentence per segment with a trailing risk legend
func RenderANSI(m model.HighlightMap) string {
	var b strings.Builder

	for i, s := range m.Sentences {
		if i > 0 {
			b.WriteString(" ")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(resolveColor(s.Color)))
		if s.RiskLevel == model.RiskHigh {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(s.Text))
	}

	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Risk: %d high, %d medium, %d low\n", m.HighRisk, m.MediumRisk, m.LowRisk))
	return b.String()
}

// RenderHTML renders the highlight map as an HTML fragment. Sentences
// with claims at medium or high risk are wrapped in mark elements
// carrying the palette color; low-risk sentences stay plain.
func RenderHTML(m model.HighlightMap) string {
	var b strings.Builder
	b.WriteString(`<div class="veridict-highlight">`)

	for i, s := range m.Sentences {
		if i > 0 {
			b.WriteString(" ")
		}
		escaped := html.EscapeString(s.Text)
		if s.RiskLevel == model.RiskLow {
			b.WriteString("<span>" + escaped + "</span>")
			continue
		}
		b.WriteString(fmt.Sprintf(
			`<mark class="risk-%s" style="background-color: %s" title="risk: %s">%s</mark>`,
			s.RiskLevel, html.EscapeString(resolveColor(s.Color)), s.RiskLevel, escaped,
		))
	}

	b.WriteString("</div>")
	return b.String()
}
