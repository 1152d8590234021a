package tui

import (
	"fmt"
	"strings"

	"runradar/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.Color("212")).Underline(true)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	verdictStyles = map[domain.Verdict]lipgloss.Style{
		domain.VerdictHighPotential: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		domain.VerdictModerate:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		domain.VerdictDud:           lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}

	userLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var tabNames = [tabCount]string{"Alerts", "Evaluate", "Advisor"}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("runradar"))
	if m.svc.Username != "" {
		b.WriteString(dimStyle.Render("  ssh:" + m.svc.Username))
	}
	b.WriteString("\n\n")

	for i, name := range tabNames {
		if tab(i) == m.active {
			b.WriteString(activeTabStyle.Render(name))
		} else {
			b.WriteString(tabStyle.Render(name))
		}
	}
	b.WriteString("\n\n")

	switch m.active {
	case tabAlerts:
		b.WriteString(m.alertsView())
	case tabEvaluate:
		b.WriteString(m.evaluateView())
	case tabAdvisor:
		b.WriteString(m.advisorView())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab: switch view | enter: submit | ctrl+c: quit"))
	return b.String()
}

func (m *AppModel) alertsView() string {
	if m.alertsErr != nil {
		return errStyle.Render("alert feed unavailable: " + m.alertsErr.Error())
	}
	if len(m.alerts) == 0 {
		return dimStyle.Render("no breakout alerts yet")
	}
	return m.alertRows.View()
}

func (m *AppModel) evaluateView() string {
	var b strings.Builder
	b.WriteString(m.evalInput.View())
	b.WriteString("\n\n")

	switch {
	case m.evalBusy:
		b.WriteString(m.spin.View() + " evaluating...")
	case m.evalErr != nil:
		b.WriteString(errStyle.Render("evaluation failed: " + m.evalErr.Error()))
	case m.evalResult != nil:
		b.WriteString(renderEvaluation(*m.evalResult))
	default:
		b.WriteString(dimStyle.Render("type a ticker and press enter"))
	}
	return b.String()
}

func renderEvaluation(r domain.EvaluationResult) string {
	verdict := verdictStyles[r.Verdict]

	var b strings.Builder
	fmt.Fprintf(&b, "%s  run score %d  %s\n\n",
		titleStyle.Render(r.Ticker), r.RunScore, verdict.Render(string(r.Verdict)))
	fmt.Fprintf(&b, "  institutional %5.1f\n", r.InstitutionalScore)
	fmt.Fprintf(&b, "  narrative     %5.1f\n", r.NarrativeScore)
	fmt.Fprintf(&b, "  other factors %5.1f\n\n", r.OtherScore)
	fmt.Fprintf(&b, "  upside   %s\n", r.UpsideProjection)
	fmt.Fprintf(&b, "  fakeout  %s\n", r.FakeoutRisk)
	if len(r.WatchFor) > 0 {
		b.WriteString("\n  watch:\n")
		for _, w := range r.WatchFor {
			b.WriteString("   - " + w + "\n")
		}
	}
	return b.String()
}

func (m *AppModel) advisorView() string {
	var b strings.Builder
	for _, line := range m.chatLog {
		if line.fromUser {
			b.WriteString(userLineStyle.Render("you: "+line.text) + "\n")
		} else {
			b.WriteString(line.text + "\n")
		}
	}
	if m.advisorBusy {
		b.WriteString(m.spin.View() + " thinking...\n")
	}
	if len(m.chatLog) == 0 && !m.advisorBusy {
		b.WriteString(dimStyle.Render("ask about any evaluated setup") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.advisorInput.View())
	return b.String()
}
