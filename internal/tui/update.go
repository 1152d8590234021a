package tui

import (
	"fmt"
	"strings"

	"runradar/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.inputFocused() || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case "tab":
			m.active = (m.active + 1) % tabCount
			m.syncFocus()
			return m, nil
		case "shift+tab":
			m.active = (m.active + tabCount - 1) % tabCount
			m.syncFocus()
			return m, nil
		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, tea.Batch(cmd, m.spin.Tick)
			}
		}

	case refreshMsg:
		cmds = append(cmds, fetchAlerts(m.svc.Alerts), scheduleRefresh())

	case alertsMsg:
		m.alertsErr = msg.err
		if msg.err == nil {
			m.alerts = msg.alerts
			m.alertRows.SetRows(alertTableRows(msg.alerts))
		}

	case evalMsg:
		m.evalBusy = false
		m.evalErr = msg.err
		if msg.err == nil {
			result := msg.result
			m.evalResult = &result
		}

	case advisorMsg:
		m.advisorBusy = false
		if msg.err != nil {
			m.chatLog = append(m.chatLog, chatLine{text: "error: " + msg.err.Error()})
		} else {
			m.chatLog = append(m.chatLog, chatLine{text: msg.reply})
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.evalBusy || m.advisorBusy {
			cmds = append(cmds, cmd)
		}
	}

	switch m.active {
	case tabAlerts:
		var cmd tea.Cmd
		m.alertRows, cmd = m.alertRows.Update(msg)
		cmds = append(cmds, cmd)
	case tabEvaluate:
		var cmd tea.Cmd
		m.evalInput, cmd = m.evalInput.Update(msg)
		cmds = append(cmds, cmd)
	case tabAdvisor:
		var cmd tea.Cmd
		m.advisorInput, cmd = m.advisorInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) inputFocused() bool {
	return (m.active == tabEvaluate && m.evalInput.Focused()) ||
		(m.active == tabAdvisor && m.advisorInput.Focused())
}

func (m *AppModel) syncFocus() {
	m.evalInput.Blur()
	m.advisorInput.Blur()
	switch m.active {
	case tabEvaluate:
		m.evalInput.Focus()
	case tabAdvisor:
		m.advisorInput.Focus()
	}
}

func (m *AppModel) submit() tea.Cmd {
	switch m.active {
	case tabEvaluate:
		ticker := domain.NormalizeTicker(m.evalInput.Value())
		if ticker == "" || m.evalBusy || m.svc.Evaluations == nil {
			return nil
		}
		m.evalBusy = true
		m.evalErr = nil
		return runEvaluation(m.svc.Evaluations, ticker)
	case tabAdvisor:
		question := strings.TrimSpace(m.advisorInput.Value())
		if question == "" || m.advisorBusy || m.svc.Advisor == nil {
			return nil
		}
		m.advisorInput.SetValue("")
		m.advisorBusy = true
		m.chatLog = append(m.chatLog, chatLine{fromUser: true, text: question})
		return askAdvisor(m.svc.Advisor, m.svc.UserID, question)
	}
	return nil
}

func alertTableRows(alerts []domain.SentAlert) []table.Row {
	rows := make([]table.Row, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, table.Row{
			a.Ticker,
			fmt.Sprintf("%d", a.BreakoutScore),
			fmt.Sprintf("$%.2f", a.AlertPrice),
			fmt.Sprintf("%.0f", a.RSIAtAlert),
			fmt.Sprintf("%.1fx", a.VolumeRatio),
			a.DetectedPattern,
			a.SentAt.Format("Jan 2 15:04"),
		})
	}
	return rows
}
