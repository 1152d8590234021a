package domain

import "time"

// Verdict is the fused assessment category derived from the run score.
type Verdict string

const (
	VerdictHighPotential Verdict = "High Potential"
	VerdictModerate      Verdict = "Moderate"
	VerdictDud           Verdict = "Dud/Fakeout"
)

// FakeoutRisk grades how likely a setup is to fail despite a decent score.
type FakeoutRisk string

const (
	FakeoutLow    FakeoutRisk = "Low"
	FakeoutMedium FakeoutRisk = "Medium"
	FakeoutHigh   FakeoutRisk = "High"
)

// EvaluationResult is one fused three-pillar assessment for a ticker.
// Immutable once returned; persistence is the caller's concern.
type EvaluationResult struct {
	Ticker             string               `json:"ticker"`
	RunScore           int                  `json:"run_score"`
	Verdict            Verdict              `json:"verdict"`
	InstitutionalScore float64              `json:"institutional_score"`
	NarrativeScore     float64              `json:"narrative_score"`
	OtherScore         float64              `json:"other_score"`
	Reasoning          string               `json:"reasoning"`
	UpsideProjection   string               `json:"upside_projection"`
	FakeoutRisk        FakeoutRisk          `json:"fakeout_risk"`
	WatchFor           []string             `json:"watch_for"`
	Timestamp          time.Time            `json:"timestamp"`
	Institutional      InstitutionalDetails `json:"institutional_details"`
	Narrative          NarrativeDetails     `json:"narrative_details"`
	Other              OtherDetails         `json:"other_details"`
	Decision           DecisionFramework    `json:"decision_framework"`
	Comparables        []Comparable         `json:"comparables"`
}

// DecisionFramework is the advisory playbook attached to an evaluation.
type DecisionFramework struct {
	EntrySignals       []string `json:"entry_signals"`
	ExitSignals        []string `json:"exit_signals"`
	PositionSizing     string   `json:"position_sizing"`
	TimeHorizon        string   `json:"time_horizon"`
	StopLossSuggestion string   `json:"stop_loss_suggestion"`
	TakeProfitLevels   []string `json:"take_profit_levels"`
}

// Comparable is a historical analog surfaced next to an evaluation.
type Comparable struct {
	Ticker     string `json:"ticker"`
	Similarity int    `json:"similarity"`
	Outcome    string `json:"outcome"`
	Lessons    string `json:"lessons"`
}

// BreakoutStock is one technical-breakout candidate from the market scan.
// A record exists only when the accumulated score clears the acceptance gate.
type BreakoutStock struct {
	Ticker         string  `json:"ticker"`
	ClosePrice     float64 `json:"close_price"`
	RSI            float64 `json:"rsi"`
	BreakoutScore  int     `json:"breakout_score"`
	Volume         float64 `json:"volume"`
	AvgVolume      float64 `json:"avg_volume"`
	VolumeRatio    float64 `json:"volume_ratio"`
	SetupType      string  `json:"setup_type"`
	HumanizedAlert string  `json:"humanized_alert"`
}

// SentAlert is a delivered breakout alert as persisted for deduplication
// and performance tracking.
type SentAlert struct {
	ID               int64     `json:"id"`
	Ticker           string    `json:"ticker"`
	AlertPrice       float64   `json:"alert_price"`
	BreakoutScore    int       `json:"breakout_score"`
	RSIAtAlert       float64   `json:"rsi_at_alert"`
	VolumeRatio      float64   `json:"volume_ratio"`
	HumanizedMessage string    `json:"humanized_message"`
	DetectedPattern  string    `json:"detected_pattern"`
	SentAt           time.Time `json:"sent_at"`
}

// AlertPerformance is the latest follow-up measurement for a delivered
// alert, joined with the alert it tracks.
type AlertPerformance struct {
	AlertID       int64     `json:"alert_id"`
	Ticker        string    `json:"ticker"`
	AlertPrice    float64   `json:"alert_price"`
	BreakoutScore int       `json:"breakout_score"`
	SentAt        time.Time `json:"sent_at"`
	LatestPrice   float64   `json:"latest_price"`
	ChangePct     float64   `json:"change_pct"`
	MeasuredAt    time.Time `json:"measured_at"`
}

// ScanRunResult summarizes one full market scan pass.
type ScanRunResult struct {
	Scanned    int             `json:"scanned"`
	Candidates []BreakoutStock `json:"candidates"`
	Delivered  int             `json:"delivered"`
	Suppressed int             `json:"suppressed"`
	Errors     []string        `json:"errors,omitempty"`
}

// ConversationMessage is one turn of an advisor chat.
type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}
