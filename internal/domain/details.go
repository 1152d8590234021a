package domain

// Per-pillar detail records produced by the scorers. These are typed rather
// than free-form maps so downstream consumers (persistence, advisor, TUI)
// never guess at keys.

type InstitutionalDetails struct {
	InsufficientData bool    `json:"insufficient_data,omitempty"`
	VolumeVsAvgPct   float64 `json:"volume_vs_avg"`
	VolumeScore      int     `json:"volume_score"`
	VolumeTrend      string  `json:"volume_trend"`
	OISkewPct        float64 `json:"oi_skew"`
	OIScore          int     `json:"oi_score"`
	OITrend          string  `json:"oi_trend"`
	BlockTrades      int     `json:"block_trades_detected"`
	DarkPoolActivity string  `json:"dark_pool_activity"`
	KeyInsight       string  `json:"key_insight"`
	SmartMoneySignal string  `json:"smart_money_signal"`
	VolumeContext    string  `json:"volume_context"`
}

type NarrativeDetails struct {
	TotalScore        float64        `json:"total_score"`
	Verdict           string         `json:"verdict"`
	XComponent        float64        `json:"x_engagement_component"`
	FramingComponent  int            `json:"news_framing_component"`
	EarningsComponent int            `json:"earnings_narrative_component"`
	ConfluenceBonus   int            `json:"confluence_bonus"`
	FramingShift      string         `json:"framing_shift"`
	Inflection        string         `json:"narrative_inflection"`
	KeyInsight        string         `json:"key_insight"`
	X                 XSignal        `json:"x_data"`
	News              NewsSignal     `json:"news_data"`
	Earnings          EarningsSignal `json:"earnings_data"`
}

type OtherDetails struct {
	InsufficientData bool               `json:"insufficient_data,omitempty"`
	TechnicalScore   int                `json:"technical_score"`
	FundamentalScore int                `json:"fundamental_score"`
	RiskScore        int                `json:"risk_score"`
	KeyInsight       string             `json:"key_insight"`
	Technical        TechnicalAnalysis  `json:"technical_analysis"`
	Fundamentals     FundamentalSummary `json:"fundamentals"`
	Risks            RiskSummary        `json:"risks"`
}

type TechnicalAnalysis struct {
	Trend              string   `json:"trend"`
	SupportLevel       float64  `json:"support_level"`
	ResistanceLevel    float64  `json:"resistance_level"`
	RSI                float64  `json:"rsi"`
	MACDSignal         string   `json:"macd_signal"`
	PatternDetected    string   `json:"pattern_detected"`
	BreakoutQuality    string   `json:"breakout_quality"`
	VolumeConfirmation bool     `json:"volume_confirmation"`
	FollowThrough      string   `json:"follow_through"`
	WarningFlags       []string `json:"warning_flags"`
}

type FundamentalSummary struct {
	EarningsBeat        bool   `json:"earnings_beat"`
	RevenueGrowth       string `json:"revenue_growth"`
	Guidance            string `json:"guidance"`
	TAMExpansion        bool   `json:"tam_expansion"`
	MarginTrend         string `json:"margin_trend"`
	CompetitivePosition string `json:"competitive_position"`
}

type RiskSummary struct {
	SectorHeadwinds   []string `json:"sector_headwinds"`
	MacroRisks        []string `json:"macro_risks"`
	CompanySpecific   []string `json:"company_specific"`
	LiquidityConcerns bool     `json:"liquidity_concerns"`
	ConcentrationRisk string   `json:"concentration_risk"`
}
