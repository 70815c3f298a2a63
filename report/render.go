package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	levelStyles = map[string]lipgloss.Style{
		"SAFE":      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98FB98")),
		"RISK":      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700")),
		"HIGH_RISK": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
	}

	severityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// RenderText produces the human-readable report form. When styled is
// false (output is piped, or --no-color) the same text is emitted without
// ANSI sequences, keeping piped output deterministic.
func RenderText(r *Report, styled bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder

	b.WriteString(paint(headerStyle, fmt.Sprintf("%s %s", r.Tool.Name, r.Tool.Version)))
	b.WriteByte('\n')

	if r.Artifact.Path != nil {
		fmt.Fprintf(&b, "Artifact: %s (%d bytes)\n", *r.Artifact.Path, r.Artifact.SizeBytes)
	} else {
		fmt.Fprintf(&b, "Artifact: %d bytes\n", r.Artifact.SizeBytes)
	}
	fmt.Fprintf(&b, "Digest: %s:%s\n", r.Artifact.Hash.Algorithm, r.Artifact.Hash.Value)
	fmt.Fprintf(&b, "Status: %s\n", r.Analysis.Status)

	for _, w := range r.Analysis.Warnings {
		b.WriteString(paint(dimStyle, fmt.Sprintf("  warning: %s", w)))
		b.WriteByte('\n')
	}

	level := string(r.Classification.Level)
	line := fmt.Sprintf("Classification: %s (exit %d)", level, r.Classification.ExitCode)
	if style, ok := levelStyles[level]; ok {
		line = "Classification: " + paint(style, level) +
			fmt.Sprintf(" (exit %d)", r.Classification.ExitCode)
	}
	b.WriteString(line)
	b.WriteByte('\n')

	if len(r.Rules.Triggered) == 0 {
		b.WriteString("Triggered rules: none\n")
		return b.String()
	}

	b.WriteString("Triggered rules:\n")
	for _, tr := range r.Rules.Triggered {
		fmt.Fprintf(&b, "  - %s %s %s\n",
			tr.RuleID,
			paint(severityStyle, "["+string(tr.Severity)+"]"),
			tr.Title,
		)
	}
	return b.String()
}
