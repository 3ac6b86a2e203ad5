package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veridict/veridict/internal/highlight"
	"github.com/veridict/veridict/internal/model"
)

// RenderJSON serializes the full result for machine consumption
func RenderJSON(result *model.Result) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// RenderMarkdown renders a human-readable verification report
func RenderMarkdown(result *model.Result) string {
	var b strings.Builder

	b.WriteString("# Verification Report\n\n")
	if result.Question != "" {
		fmt.Fprintf(&b, "**Question:** %s\n\n", result.Question)
	}
	fmt.Fprintf(&b, "**Answer:** %s\n\n", result.Answer)
	if result.Generated != nil {
		fmt.Fprintf(&b, "*Answer generated by %s (%s)*\n\n", result.Generated.Provider, result.Generated.Model)
	}

	report := result.Report
	fmt.Fprintf(&b, "## Truthfulness: %.1f/100 (%s)\n\n", report.TruthfulnessScore, report.Category)
	fmt.Fprintf(&b, "%s\n\n", report.Description)
	fmt.Fprintf(&b, "- **Risk level:** %s\n", report.RiskLevel)
	fmt.Fprintf(&b, "- **Claims:** %d total — %d supported, %d partially supported, %d unsupported, %d conflicting\n\n",
		report.ClaimSummary.Total,
		report.ClaimSummary.Supported,
		report.ClaimSummary.PartiallySupported,
		report.ClaimSummary.Unsupported,
		report.ClaimSummary.Conflicting)

	if len(result.Records) > 0 {
		b.WriteString("## Claims\n\n")
		b.WriteString("| # | Claim | Status | Confidence |\n")
		b.WriteString("|---|-------|--------|------------|\n")
		for _, rec := range result.Records {
			fmt.Fprintf(&b, "| %d | %s | %s | %.2f |\n",
				rec.ClaimIndex+1, escapePipes(rec.Claim), rec.Status, rec.Confidence)
		}
		b.WriteString("\n")

		for _, rec := range result.Records {
			if rec.Status == model.StatusSupported {
				continue
			}
			fmt.Fprintf(&b, "**Claim %d** (%s): %s\n\n", rec.ClaimIndex+1, rec.Status, rec.Reasoning)
		}
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(result.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- Claim %d (%q): %s\n", e.ClaimIndex+1, e.Claim, e.Error)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated %s in %s\n",
		result.RunAt.Format(time.RFC3339), result.Elapsed.Round(time.Millisecond))
	return b.String()
}

// RenderHTML renders the highlighted answer with a summary header,
// suitable for embedding in a page
func RenderHTML(result *model.Result) string {
	var b strings.Builder

	b.WriteString("<div class=\"veridict-report\">\n")
	fmt.Fprintf(&b, "<h2>Truthfulness: %.1f/100 (%s)</h2>\n", result.Report.TruthfulnessScore, result.Report.Category)
	fmt.Fprintf(&b, "<p>%s Risk level: %s.</p>\n", result.Report.Description, result.Report.RiskLevel)
	b.WriteString(highlight.RenderHTML(result.Highlights))
	b.WriteString("\n</div>\n")
	return b.String()
}

// RenderSummary renders a short ANSI summary for terminal output
func RenderSummary(result *model.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Truthfulness: %.1f/100 (%s) — risk %s\n",
		result.Report.TruthfulnessScore, result.Report.Category, result.Report.RiskLevel)
	fmt.Fprintf(&b, "Claims: %d supported, %d partial, %d unsupported, %d conflicting\n\n",
		result.Report.ClaimSummary.Supported,
		result.Report.ClaimSummary.PartiallySupported,
		result.Report.ClaimSummary.Unsupported,
		result.Report.ClaimSummary.Conflicting)
	b.WriteString(highlight.RenderANSI(result.Highlights))
	return b.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
