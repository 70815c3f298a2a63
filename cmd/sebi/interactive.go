package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xphen/sebi/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	safeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	riskStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))

	highRiskStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var viewerTabs = []string{"Overview", "Signals", "Rules", "JSON"}

type viewerModel struct {
	rep      *report.Report
	viewport viewport.Model
	tab      int
	ready    bool
}

func newViewerModel(rep *report.Report) *viewerModel {
	return &viewerModel{rep: rep}
}

func (m *viewerModel) Init() tea.Cmd {
	return nil
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(viewerTabs)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(viewerTabs) - 1) % len(viewerTabs)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
		}

	case tea.WindowSizeMsg:
		headerHeight := 3
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.tabContent())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var tabs []string
	for i, name := range viewerTabs {
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}

	header := titleStyle.Render(fmt.Sprintf("%s %s", m.rep.Tool.Name, m.rep.Tool.Version)) +
		"  " + levelBadge(string(m.rep.Classification.Level)) + "\n" +
		strings.Join(tabs, " ") + "\n"
	footer := helpStyle.Render("tab/←→ switch view · ↑↓ scroll · q quit")

	return header + m.viewport.View() + "\n" + footer
}

func (m *viewerModel) tabContent() string {
	switch viewerTabs[m.tab] {
	case "Signals":
		return m.signalsView()
	case "Rules":
		return m.rulesView()
	case "JSON":
		raw, err := m.rep.EncodeJSON()
		if err != nil {
			return fmt.Sprintf("encode error: %v", err)
		}
		return string(raw)
	default:
		return m.overviewView()
	}
}

func (m *viewerModel) overviewView() string {
	var b strings.Builder
	c := m.rep.Classification

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label+":"), value)
	}

	if m.rep.Artifact.Path != nil {
		row("Artifact", *m.rep.Artifact.Path)
	}
	row("Size", fmt.Sprintf("%d bytes", m.rep.Artifact.SizeBytes))
	row("Digest", fmt.Sprintf("%s:%s", m.rep.Artifact.Hash.Algorithm, m.rep.Artifact.Hash.Value))
	row("Status", m.rep.Analysis.Status)
	row("Level", string(c.Level))
	row("Highest severity", string(c.HighestSeverity))
	row("Exit code", fmt.Sprintf("%d", c.ExitCode))
	row("Policy", c.Policy)
	row("Reason", c.Reason)

	for _, w := range m.rep.Analysis.Warnings {
		fmt.Fprintf(&b, "%s %s\n", helpStyle.Render("warning:"), w)
	}
	return b.String()
}

func (m *viewerModel) signalsView() string {
	var b strings.Builder
	sig := m.rep.Signals

	fmt.Fprintf(&b, "%s\n", labelStyle.Render("module"))
	fmt.Fprintf(&b, "  function_count: %d\n", sig.Module.FunctionCount)
	if sig.Module.SectionCount != nil {
		fmt.Fprintf(&b, "  section_count: %d\n", *sig.Module.SectionCount)
	}

	fmt.Fprintf(&b, "%s\n", labelStyle.Render("memory"))
	fmt.Fprintf(&b, "  memory_count: %d\n", sig.Memory.MemoryCount)
	fmt.Fprintf(&b, "  min_pages: %s\n", pagesString(sig.Memory.MinPages))
	fmt.Fprintf(&b, "  max_pages: %s\n", pagesString(sig.Memory.MaxPages))
	fmt.Fprintf(&b, "  has_max: %t\n", sig.Memory.HasMax)

	fmt.Fprintf(&b, "%s\n", labelStyle.Render("instructions"))
	fmt.Fprintf(&b, "  memory_grow: %d\n", sig.Instructions.MemoryGrowCount)
	fmt.Fprintf(&b, "  call_indirect: %d\n", sig.Instructions.CallIndirectCount)
	fmt.Fprintf(&b, "  loop: %d\n", sig.Instructions.LoopCount)

	fmt.Fprintf(&b, "%s (%d)\n", labelStyle.Render("imports"), sig.ImportsExports.ImportCount)
	for _, imp := range sig.ImportsExports.Imports {
		fmt.Fprintf(&b, "  %s.%s (%s)\n", imp.Module, imp.Name, imp.Kind)
	}
	fmt.Fprintf(&b, "%s (%d)\n", labelStyle.Render("exports"), sig.ImportsExports.ExportCount)
	for _, exp := range sig.ImportsExports.Exports {
		fmt.Fprintf(&b, "  %s (%s)\n", exp.Name, exp.Kind)
	}
	return b.String()
}

func (m *viewerModel) rulesView() string {
	if len(m.rep.Rules.Triggered) == 0 {
		return safeStyle.Render("no rules triggered")
	}

	var b strings.Builder
	for _, tr := range m.rep.Rules.Triggered {
		badge := riskStyle
		if tr.Severity == "High" {
			badge = highRiskStyle
		}
		fmt.Fprintf(&b, "%s %s\n", badge.Render(fmt.Sprintf("[%s]", tr.Severity)), tr.RuleID)
		fmt.Fprintf(&b, "  %s\n", tr.Title)
		fmt.Fprintf(&b, "  %s\n", helpStyle.Render(tr.Message))
		keys := make([]string, 0, len(tr.Evidence))
		for key := range tr.Evidence {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, "    %s = %v\n", labelStyle.Render(key), tr.Evidence[key])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pagesString(pages *uint64) string {
	if pages == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *pages)
}

func levelBadge(level string) string {
	switch level {
	case "SAFE":
		return safeStyle.Render(level)
	case "RISK":
		return riskStyle.Render(level)
	default:
		return highRiskStyle.Render(level)
	}
}

// runInteractive opens the report viewer in the terminal.
func runInteractive(rep *report.Report) error {
	p := tea.NewProgram(newViewerModel(rep), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
