package tui

import (
	"context"
	"time"

	"runradar/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EvaluationQuerier runs a fusion evaluation on demand from the dashboard.
type EvaluationQuerier interface {
	Evaluate(ctx context.Context, ticker string) (domain.EvaluationResult, error)
}

// AlertQuerier feeds the alert feed tab.
type AlertQuerier interface {
	RecentAlerts(ctx context.Context, limit int) ([]domain.SentAlert, error)
}

// AdvisorQuerier answers free-form questions on the advisor tab.
type AdvisorQuerier interface {
	Ask(ctx context.Context, chatID int64, question string) (string, error)
}

// Services bundles everything the dashboard needs from the host process.
type Services struct {
	Evaluations EvaluationQuerier
	Alerts      AlertQuerier
	Advisor     AdvisorQuerier
	UserID      int64
	Username    string
}

type tab int

const (
	tabAlerts tab = iota
	tabEvaluate
	tabAdvisor
	tabCount
)

const (
	alertFeedLimit       = 20
	alertRefreshInterval = 30 * time.Second
	queryTimeout         = 45 * time.Second
)

// Messages

type alertsMsg struct {
	alerts []domain.SentAlert
	err    error
}

type evalMsg struct {
	result domain.EvaluationResult
	err    error
}

type advisorMsg struct {
	reply string
	err   error
}

type refreshMsg struct{}

type AppModel struct {
	svc Services

	width  int
	height int
	active tab

	alerts    []domain.SentAlert
	alertsErr error
	alertRows table.Model

	evalInput  textinput.Model
	evalResult *domain.EvaluationResult
	evalErr    error
	evalBusy   bool

	advisorInput textinput.Model
	chatLog      []chatLine
	advisorBusy  bool

	spin spinner.Model
}

type chatLine struct {
	fromUser bool
	text     string
}

func NewAppModel(svc Services) *AppModel {
	evalInput := textinput.New()
	evalInput.Placeholder = "ticker (e.g. NVDA)"
	evalInput.CharLimit = 6

	advisorInput := textinput.New()
	advisorInput.Placeholder = "ask about a setup..."
	advisorInput.CharLimit = 280

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	cols := []table.Column{
		{Title: "Ticker", Width: 8},
		{Title: "Score", Width: 6},
		{Title: "Price", Width: 10},
		{Title: "RSI", Width: 6},
		{Title: "Vol", Width: 6},
		{Title: "Setup", Width: 24},
		{Title: "Sent", Width: 12},
	}
	alertRows := table.New(table.WithColumns(cols), table.WithHeight(12))

	return &AppModel{
		svc:          svc,
		evalInput:    evalInput,
		advisorInput: advisorInput,
		spin:         sp,
		alertRows:    alertRows,
	}
}

// SetSize seeds the dimensions before the program starts, from the SSH pty.
func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(fetchAlerts(m.svc.Alerts), scheduleRefresh(), m.spin.Tick)
}

// Commands

func fetchAlerts(q AlertQuerier) tea.Cmd {
	return func() tea.Msg {
		if q == nil {
			return alertsMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		alerts, err := q.RecentAlerts(ctx, alertFeedLimit)
		return alertsMsg{alerts: alerts, err: err}
	}
}

func runEvaluation(q EvaluationQuerier, ticker string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		result, err := q.Evaluate(ctx, ticker)
		return evalMsg{result: result, err: err}
	}
}

func askAdvisor(q AdvisorQuerier, chatID int64, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		reply, err := q.Ask(ctx, chatID, question)
		return advisorMsg{reply: reply, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(alertRefreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}
