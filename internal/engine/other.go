package engine

import (
	"fmt"

	"runradar/internal/domain"
)

// Other-factors pillar weights: technical setup, fundamentals, residual risk.
const (
	otherTechWeight = 0.45
	otherFundWeight = 0.35
	otherRiskWeight = 0.20
)

// ScoreOtherFactors converts a technical/fundamental fetch bundle into a
// 0-100 pillar score. Missing technical data degrades to a neutral 50.
func ScoreOtherFactors(b domain.MarketBundle) (float64, domain.OtherDetails) {
	tech := b.Technical
	fund := b.Fundamental

	if !tech.OK() {
		return 50.0, domain.OtherDetails{
			InsufficientData: true,
			KeyInsight:       "Technical data unavailable",
		}
	}

	var techScore int
	switch tech.Trend {
	case "strong_uptrend":
		techScore = 100
	case "uptrend":
		techScore = 80
	case "sideways":
		techScore = 60
	default:
		techScore = 40
	}
	techScore -= len(tech.WarningFlags) * 10
	if techScore < 20 {
		techScore = 20
	}

	fundScore := 50
	if fund.IsFundamentallyHealthy {
		fundScore = 80
		if fund.HasGrowthStory {
			fundScore = 100
		}
	}

	riskScore := 80
	if n := len(tech.WarningFlags); n > 0 {
		riskScore = 80 - n*20
		if riskScore < 40 {
			riskScore = 40
		}
	}

	score := clamp(float64(techScore)*otherTechWeight+
		float64(fundScore)*otherFundWeight+
		float64(riskScore)*otherRiskWeight, 0, 100)

	setup := "Clean"
	quality := "clean"
	if len(tech.WarningFlags) > 0 {
		setup = "Cautionary"
		quality = "messy"
	}
	strength := "moderate"
	if fundScore >= 80 {
		strength = "strong"
	}

	guidance := "maintained"
	if fund.HasGrowthStory {
		guidance = "raised"
	}
	marginTrend := "stable"
	if fund.IsFundamentallyHealthy {
		marginTrend = "improving"
	}
	revenueGrowth := "N/A"
	if fund.Metrics.RevenueGrowth != 0 {
		revenueGrowth = fmt.Sprintf("%+.0f%% YoY", fund.Metrics.RevenueGrowth*100)
	}

	var macroRisks []string
	if fund.Metrics.PERatio > 30 {
		macroRisks = append(macroRisks, "Rising interest rates affecting growth multiples")
	}

	return score, domain.OtherDetails{
		TechnicalScore:   techScore,
		FundamentalScore: fundScore,
		RiskScore:        riskScore,
		KeyInsight:       fmt.Sprintf("%s technical setup with %s fundamentals", setup, strength),
		Technical: domain.TechnicalAnalysis{
			Trend:              tech.Trend,
			SupportLevel:       tech.SupportLevel,
			ResistanceLevel:    tech.ResistanceLevel,
			RSI:                tech.RSI,
			MACDSignal:         tech.MACDSignal,
			PatternDetected:    tech.PatternDetected,
			BreakoutQuality:    quality,
			VolumeConfirmation: tech.FollowThrough == "strong",
			FollowThrough:      tech.FollowThrough,
			WarningFlags:       tech.WarningFlags,
		},
		Fundamentals: domain.FundamentalSummary{
			EarningsBeat:        fund.EarningsBeat,
			RevenueGrowth:       revenueGrowth,
			Guidance:            guidance,
			TAMExpansion:        fund.HasGrowthStory,
			MarginTrend:         marginTrend,
			CompetitivePosition: "strengthening",
		},
		Risks: domain.RiskSummary{
			MacroRisks:        macroRisks,
			ConcentrationRisk: "low",
		},
	}
}
