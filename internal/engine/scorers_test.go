package engine

import (
	"strings"
	"testing"
	"time"

	"runradar/internal/domain"
)

func TestScoreInstitutionalBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		bundle domain.InstitutionalBundle
		want   float64
	}{
		{
			name: "all maxed",
			bundle: domain.InstitutionalBundle{
				Volume:  domain.VolumeData{VolumeVsAvgPct: 150},
				Options: domain.OptionsData{OISkewPct: 30},
				Blocks:  domain.BlockData{BlockTrades: 7},
			},
			want: 100,
		},
		{
			name: "mid bands",
			bundle: domain.InstitutionalBundle{
				Volume:  domain.VolumeData{VolumeVsAvgPct: 60},
				Options: domain.OptionsData{OISkewPct: 15},
				Blocks:  domain.BlockData{BlockTrades: 3},
			},
			// 80*0.50 + 80*0.35 + 80*0.15
			want: 80,
		},
		{
			name: "all floors",
			bundle: domain.InstitutionalBundle{
				Volume:  domain.VolumeData{VolumeVsAvgPct: -5},
				Options: domain.OptionsData{OISkewPct: -2},
				Blocks:  domain.BlockData{BlockTrades: 0},
			},
			// 20*0.50 + 40*0.35 + 40*0.15
			want: 30,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			score, details := ScoreInstitutional(tc.bundle)
			if score != tc.want {
				t.Fatalf("expected %.0f, got %.2f", tc.want, score)
			}
			if details.InsufficientData {
				t.Fatal("did not expect insufficient-data flag")
			}
			if details.KeyInsight == "" || details.VolumeContext == "" {
				t.Fatal("expected populated insight fields")
			}
		})
	}
}

func TestScoreInstitutionalMissingDataIsNeutral(t *testing.T) {
	t.Parallel()

	score, details := ScoreInstitutional(domain.InstitutionalBundle{
		Volume:  domain.VolumeData{Err: "quota exceeded"},
		Options: domain.OptionsData{OISkewPct: 30},
	})
	if score != 50 {
		t.Fatalf("expected neutral 50, got %.2f", score)
	}
	if !details.InsufficientData {
		t.Fatal("expected insufficient-data flag")
	}
}

func TestScoreNarrativeViralConfluence(t *testing.T) {
	t.Parallel()

	score, details := ScoreNarrative(domain.NarrativeBundle{
		X:        domain.XSignal{Found: true, IsViral: true, ViralTweetCount: 3, TotalLikes: 9000},
		News:     domain.NewsSignal{SentimentRatio: 0.75, UpgradeMentions: 2},
		Earnings: domain.EarningsSignal{HasEarningsData: true, StrongSignals: 3, InflectionRatio: 0.85},
	})
	// 30 + 20 + 20 + 15 confluence
	if score != 85 {
		t.Fatalf("expected 85, got %.2f", score)
	}
	if details.Verdict != "viral_narrative" {
		t.Fatalf("unexpected verdict %q", details.Verdict)
	}
	if details.ConfluenceBonus != 15 {
		t.Fatalf("expected full confluence bonus, got %d", details.ConfluenceBonus)
	}
	if !strings.Contains(details.KeyInsight, "Viral momentum") {
		t.Fatalf("unexpected insight %q", details.KeyInsight)
	}
}

func TestScoreNarrativeQuietTickerFloors(t *testing.T) {
	t.Parallel()

	score, details := ScoreNarrative(domain.NarrativeBundle{})
	// 5 X floor + 5 mixed framing + 0 earnings
	if score != 10 {
		t.Fatalf("expected floor score 10, got %.2f", score)
	}
	if details.Verdict != "no_narrative" {
		t.Fatalf("unexpected verdict %q", details.Verdict)
	}
	if details.ConfluenceBonus != 0 {
		t.Fatalf("expected no confluence bonus, got %d", details.ConfluenceBonus)
	}
}

func TestScoreNarrativeWeakEarningsPenalty(t *testing.T) {
	t.Parallel()

	ec, inflection := earningsComponent(domain.EarningsSignal{
		HasEarningsData: true,
		StrongSignals:   1,
		WeakSignals:     4,
		InflectionRatio: 0.2,
	})
	if ec != 2 {
		t.Fatalf("expected penalty score 2, got %d", ec)
	}
	if inflection != "mixed" {
		t.Fatalf("unexpected inflection %q", inflection)
	}
}

func TestScoreOtherFactorsWarningsDragScores(t *testing.T) {
	t.Parallel()

	score, details := ScoreOtherFactors(domain.MarketBundle{
		Technical: domain.TechnicalData{
			Trend:        "uptrend",
			WarningFlags: []string{"overbought RSI", "thin liquidity", "extended from moving averages"},
		},
		Fundamental: domain.FundamentalData{IsFundamentallyHealthy: true},
	})
	if details.TechnicalScore != 50 {
		t.Fatalf("expected technical 80-30=50, got %d", details.TechnicalScore)
	}
	if details.RiskScore != 40 {
		t.Fatalf("expected risk floor 40 after three warnings, got %d", details.RiskScore)
	}
	if details.FundamentalScore != 80 {
		t.Fatalf("expected healthy fundamentals 80, got %d", details.FundamentalScore)
	}
	// 50*0.45 + 80*0.35 + 40*0.20
	if score != 58.5 {
		t.Fatalf("expected 58.5, got %.2f", score)
	}
}

func TestScoreOtherFactorsTechnicalErrorIsNeutral(t *testing.T) {
	t.Parallel()

	score, details := ScoreOtherFactors(domain.MarketBundle{
		Technical: domain.TechnicalData{Err: "chart fetch failed"},
	})
	if score != 50 {
		t.Fatalf("expected neutral 50, got %.2f", score)
	}
	if !details.InsufficientData {
		t.Fatal("expected insufficient-data flag")
	}
}

func TestFuseVerdictBoundaries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		inst, narr, other float64
		want              domain.Verdict
	}{
		{90, 90, 90, domain.VerdictHighPotential},
		{75, 75, 75, domain.VerdictHighPotential},
		{60, 60, 60, domain.VerdictModerate},
		{50, 50, 50, domain.VerdictModerate},
		{30, 30, 30, domain.VerdictDud},
	}
	for _, tc := range cases {
		res := Fuse("TEST", now,
			tc.inst, domain.InstitutionalDetails{},
			tc.narr, domain.NarrativeDetails{},
			tc.other, domain.OtherDetails{})
		if res.Verdict != tc.want {
			t.Fatalf("pillars (%.0f, %.0f, %.0f): expected %s, got %s (score %d)",
				tc.inst, tc.narr, tc.other, tc.want, res.Verdict, res.RunScore)
		}
		if res.Timestamp != now {
			t.Fatalf("expected timestamp passthrough, got %v", res.Timestamp)
		}
	}
}

func TestFuseRoundsToNearestInteger(t *testing.T) {
	t.Parallel()

	res := Fuse("TEST", time.Now(),
		71, domain.InstitutionalDetails{},
		68, domain.NarrativeDetails{},
		55, domain.OtherDetails{})
	// 0.35*71 + 0.35*68 + 0.30*55 = 65.15
	if res.RunScore != 65 {
		t.Fatalf("expected rounded 65, got %d", res.RunScore)
	}
}

func TestUpsideProjectionBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  string
	}{
		{90, "100-300%+"},
		{85, "100-300%+"},
		{84, "50-150%"},
		{80, "50-150%"},
		{75, "50-150%"},
		{74, "20-50%"},
		{60, "20-50%"},
		{59, "10-25%"},
		{50, "10-25%"},
		{49, "<10% or negative"},
		{0, "<10% or negative"},
	}
	for _, tc := range cases {
		if got := upsideProjection(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

func TestDecisionFrameworkBands(t *testing.T) {
	t.Parallel()

	high := decisionFramework(75)
	if high.PositionSizing != "Half position now, add on confirmation" {
		t.Fatalf("unexpected high-band sizing %q", high.PositionSizing)
	}
	if high.StopLossSuggestion != "8-10% below entry" {
		t.Fatalf("unexpected high-band stop %q", high.StopLossSuggestion)
	}
	if high.TimeHorizon != "2-6 weeks" {
		t.Fatalf("unexpected high-band horizon %q", high.TimeHorizon)
	}
	if len(high.TakeProfitLevels) != 3 {
		t.Fatalf("expected three take-profit levels, got %v", high.TakeProfitLevels)
	}

	moderate := decisionFramework(74)
	if moderate.PositionSizing != "Quarter position at most" {
		t.Fatalf("unexpected moderate-band sizing %q", moderate.PositionSizing)
	}
	if moderate.StopLossSuggestion != "6-8% below entry" {
		t.Fatalf("unexpected moderate-band stop %q", moderate.StopLossSuggestion)
	}

	avoid := decisionFramework(49)
	if avoid.PositionSizing != "No position" {
		t.Fatalf("unexpected avoid-band sizing %q", avoid.PositionSizing)
	}
	if avoid.TakeProfitLevels != nil {
		t.Fatalf("expected no take-profit levels, got %v", avoid.TakeProfitLevels)
	}
}

func TestFuseScore80ReadsAsHighPotential(t *testing.T) {
	t.Parallel()

	// Equal pillars fuse to the shared value, so 80/80/80 lands on 80 exactly.
	res := Fuse("TEST", time.Now(),
		80, domain.InstitutionalDetails{},
		80, domain.NarrativeDetails{},
		80, domain.OtherDetails{})
	if res.RunScore != 80 {
		t.Fatalf("expected run score 80, got %d", res.RunScore)
	}
	if res.Verdict != domain.VerdictHighPotential {
		t.Fatalf("expected High Potential, got %s", res.Verdict)
	}
	if res.UpsideProjection != "50-150%" {
		t.Fatalf("expected upside 50-150%%, got %q", res.UpsideProjection)
	}
	if res.Decision.PositionSizing != "Half position now, add on confirmation" {
		t.Fatalf("unexpected sizing %q", res.Decision.PositionSizing)
	}
}

func TestFakeoutRiskGrading(t *testing.T) {
	t.Parallel()

	warn := domain.OtherDetails{Technical: domain.TechnicalAnalysis{WarningFlags: []string{"low follow-through"}}}
	if got := fakeoutRisk(80, 80, domain.OtherDetails{}); got != domain.FakeoutLow {
		t.Fatalf("expected Low, got %s", got)
	}
	if got := fakeoutRisk(40, 80, domain.OtherDetails{}); got != domain.FakeoutMedium {
		t.Fatalf("expected Medium, got %s", got)
	}
	if got := fakeoutRisk(40, 40, warn); got != domain.FakeoutHigh {
		t.Fatalf("expected High, got %s", got)
	}
}

func TestWatchListPadsAndCaps(t *testing.T) {
	t.Parallel()

	sparse := watchList(domain.InstitutionalDetails{}, domain.NarrativeDetails{}, domain.OtherDetails{})
	if len(sparse) == 0 {
		t.Fatal("expected at least the padding item")
	}
	found := false
	for _, item := range sparse {
		if item == "Sector rotation momentum" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the sector padding item for a sparse setup")
	}

	// Four pillar-driven items still leave room, so the sector item rides along.
	dense := watchList(
		domain.InstitutionalDetails{BlockTrades: 5, OIScore: 100},
		domain.NarrativeDetails{XComponent: 30, EarningsComponent: 20},
		domain.OtherDetails{},
	)
	if len(dense) != 5 {
		t.Fatalf("expected 5 items for a four-signal setup, got %d", len(dense))
	}
	if dense[4] != "Sector rotation momentum" {
		t.Fatalf("expected the sector item to close the list, got %q", dense[4])
	}

	overflowing := watchList(
		domain.InstitutionalDetails{BlockTrades: 5, OIScore: 100},
		domain.NarrativeDetails{XComponent: 30, EarningsComponent: 20},
		domain.OtherDetails{Technical: domain.TechnicalAnalysis{
			WarningFlags:    []string{"a", "b", "c"},
			ResistanceLevel: 120,
		}},
	)
	if len(overflowing) != 5 {
		t.Fatalf("expected the watch list capped at 5, got %d", len(overflowing))
	}
}

func TestClampHandlesNaN(t *testing.T) {
	t.Parallel()

	if got := clamp(nan(), 0, 100); got != 0 {
		t.Fatalf("expected NaN clamped to 0, got %v", got)
	}
	if got := clamp(150, 0, 100); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := clamp(-10, 0, 100); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
