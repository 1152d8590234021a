package domain

// Fetch contracts for the three pillar data sources. Each sub-signal carries
// an Err field instead of a free-form error map: empty Err means the data is
// usable. Scoring over these bundles lives in internal/engine.

// InstitutionalBundle is the institutional-activity fetch result.
type InstitutionalBundle struct {
	Volume  VolumeData  `json:"volume_data"`
	Options OptionsData `json:"options_data"`
	Blocks  BlockData   `json:"block_data"`
}

type VolumeData struct {
	VolumeVsAvgPct float64 `json:"volume_vs_avg_pct"`
	VolumeTrend    string  `json:"volume_trend"`
	Err            string  `json:"error,omitempty"`
}

func (v VolumeData) OK() bool { return v.Err == "" }

type OptionsData struct {
	OISkewPct float64 `json:"oi_skew_pct"`
	OITrend   string  `json:"oi_trend"`
	Err       string  `json:"error,omitempty"`
}

func (o OptionsData) OK() bool { return o.Err == "" }

type BlockData struct {
	BlockTrades      int    `json:"block_trades_count"`
	DarkPoolActivity string `json:"dark_pool_activity"`
}

// NarrativeBundle is the narrative/sentiment fetch result. The collaborator
// does the searching and counting; only counts and ratios cross this contract.
type NarrativeBundle struct {
	X        XSignal        `json:"x_data"`
	News     NewsSignal     `json:"news_data"`
	Earnings EarningsSignal `json:"earnings_data"`
}

type XSignal struct {
	Found           bool    `json:"found"`
	TweetCount      int     `json:"tweet_count"`
	ViralTweetCount int     `json:"viral_tweet_count"`
	TotalLikes      int     `json:"total_likes"`
	EngagementScore float64 `json:"engagement_score"`
	IsViral         bool    `json:"is_viral"`
}

type NewsSignal struct {
	UpgradeMentions int     `json:"upgrade_mentions"`
	NewsMentions    int     `json:"news_mentions"`
	PositiveSignals int     `json:"positive_signals"`
	NegativeSignals int     `json:"negative_signals"`
	SentimentRatio  float64 `json:"sentiment_ratio"`
}

type EarningsSignal struct {
	HasEarningsData bool    `json:"has_earnings_data"`
	StrongSignals   int     `json:"strong_signals"`
	WeakSignals     int     `json:"weak_signals"`
	InflectionRatio float64 `json:"inflection_ratio"`
}

// MarketBundle is the technical/fundamental fetch result.
type MarketBundle struct {
	Technical   TechnicalData   `json:"technical"`
	Fundamental FundamentalData `json:"fundamental"`
}

type TechnicalData struct {
	RSI             float64  `json:"rsi"`
	Trend           string   `json:"trend"`
	WarningFlags    []string `json:"warning_flags"`
	SupportLevel    float64  `json:"support_level"`
	ResistanceLevel float64  `json:"resistance_level"`
	MACDSignal      string   `json:"macd_signal"`
	PatternDetected string   `json:"pattern_detected"`
	FollowThrough   string   `json:"follow_through"`
	Err             string   `json:"error,omitempty"`
}

func (t TechnicalData) OK() bool { return t.Err == "" }

type FundamentalData struct {
	IsFundamentallyHealthy bool               `json:"is_fundamentally_healthy"`
	HasGrowthStory         bool               `json:"has_growth_story"`
	EarningsBeat           bool               `json:"earnings_beat"`
	Metrics                FundamentalMetrics `json:"metrics"`
}

type FundamentalMetrics struct {
	PERatio       float64 `json:"pe_ratio"`
	RevenueGrowth float64 `json:"revenue_growth"`
	MarketCap     float64 `json:"market_cap"`
	Beta          float64 `json:"beta"`
}
