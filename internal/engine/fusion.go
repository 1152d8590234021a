package engine

import (
	"fmt"
	"math"
	"time"

	"runradar/internal/domain"
)

// Fusion weights. They sum to 1.0; institutional and narrative carry equal
// weight, the other-factors pillar slightly less.
const (
	fuseInstWeight  = 0.35
	fuseNarrWeight  = 0.35
	fuseOtherWeight = 0.30
)

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Fuse combines the three pillar scores into a final evaluation. Pillar
// detail records pass through untouched; everything advisory (verdict,
// upside band, fakeout risk, watch list, decision framework) derives from
// the fused score and the pillar values alone.
func Fuse(ticker string, now time.Time,
	instScore float64, inst domain.InstitutionalDetails,
	narrScore float64, narr domain.NarrativeDetails,
	otherScore float64, other domain.OtherDetails) domain.EvaluationResult {

	fused := clamp(instScore*fuseInstWeight+narrScore*fuseNarrWeight+otherScore*fuseOtherWeight, 0, 100)
	runScore := int(math.Round(fused))

	verdict := domain.VerdictDud
	switch {
	case runScore >= 75:
		verdict = domain.VerdictHighPotential
	case runScore >= 50:
		verdict = domain.VerdictModerate
	}

	return domain.EvaluationResult{
		Ticker:             ticker,
		RunScore:           runScore,
		Verdict:            verdict,
		InstitutionalScore: instScore,
		NarrativeScore:     narrScore,
		OtherScore:         otherScore,
		Reasoning:          reasoning(runScore, inst, narr, other),
		UpsideProjection:   upsideProjection(runScore),
		FakeoutRisk:        fakeoutRisk(instScore, narrScore, other),
		WatchFor:           watchList(inst, narr, other),
		Timestamp:          now.UTC(),
		Institutional:      inst,
		Narrative:          narr,
		Other:              other,
		Decision:           decisionFramework(runScore),
		Comparables:        comparables(),
	}
}

func upsideProjection(runScore int) string {
	switch {
	case runScore >= 85:
		return "100-300%+"
	case runScore >= 75:
		return "50-150%"
	case runScore >= 60:
		return "20-50%"
	case runScore >= 50:
		return "10-25%"
	default:
		return "<10% or negative"
	}
}

func fakeoutRisk(instScore, narrScore float64, other domain.OtherDetails) domain.FakeoutRisk {
	flags := 0
	if instScore < 50 {
		flags++
	}
	if narrScore < 50 {
		flags++
	}
	if len(other.Technical.WarningFlags) > 0 {
		flags++
	}
	switch {
	case flags >= 2:
		return domain.FakeoutHigh
	case flags == 1:
		return domain.FakeoutMedium
	default:
		return domain.FakeoutLow
	}
}

// watchList surfaces up to five things to monitor. The generic sector item
// is always a candidate; truncation decides whether it survives.
func watchList(inst domain.InstitutionalDetails, narr domain.NarrativeDetails, other domain.OtherDetails) []string {
	var items []string
	if inst.BlockTrades >= 3 {
		items = append(items, fmt.Sprintf("Continued block trade accumulation (%d detected)", inst.BlockTrades))
	}
	if inst.OIScore >= 80 {
		items = append(items, "Options open interest shift toward calls")
	}
	if narr.XComponent >= 20 {
		items = append(items, "Social momentum turning into sustained coverage")
	}
	if narr.EarningsComponent >= 15 {
		items = append(items, "Next earnings report confirming the inflection")
	}
	for _, w := range other.Technical.WarningFlags {
		items = append(items, "Technical caution: "+w)
	}
	if other.Technical.ResistanceLevel > 0 {
		items = append(items, fmt.Sprintf("Break and hold above resistance at %.2f", other.Technical.ResistanceLevel))
	}
	items = append(items, "Sector rotation momentum")
	if len(items) > 5 {
		items = items[:5]
	}
	return items
}

func reasoning(runScore int, inst domain.InstitutionalDetails, narr domain.NarrativeDetails, other domain.OtherDetails) string {
	return fmt.Sprintf("Fused score %d. Institutional: %s Narrative: %s Other factors: %s",
		runScore, sentence(inst.KeyInsight), sentence(narr.KeyInsight), sentence(other.KeyInsight))
}

func sentence(s string) string {
	if s == "" {
		return "no standout signal."
	}
	if s[len(s)-1] != '.' {
		return s + "."
	}
	return s
}

func decisionFramework(runScore int) domain.DecisionFramework {
	switch {
	case runScore >= 75:
		return domain.DecisionFramework{
			EntrySignals: []string{
				"Enter on pullback to support or breakout confirmation",
				"Volume above 1.5x average on the entry day",
			},
			ExitSignals: []string{
				"Institutional flow reverses (volume score drops below 40)",
				"Narrative verdict decays below 'building'",
			},
			PositionSizing:     "Half position now, add on confirmation",
			TimeHorizon:        "2-6 weeks",
			StopLossSuggestion: "8-10% below entry",
			TakeProfitLevels:   []string{"+10%", "+20%", "trail remainder"},
		}
	case runScore >= 50:
		return domain.DecisionFramework{
			EntrySignals: []string{
				"Wait for a catalyst or an institutional score above 70",
			},
			ExitSignals: []string{
				"Breakdown below support on rising volume",
			},
			PositionSizing:     "Quarter position at most",
			TimeHorizon:        "1-4 weeks",
			StopLossSuggestion: "6-8% below entry",
			TakeProfitLevels:   []string{"+8%", "+15%"},
		}
	default:
		return domain.DecisionFramework{
			EntrySignals:       []string{"Do not enter; add to watchlist only"},
			ExitSignals:        []string{"n/a"},
			PositionSizing:     "No position",
			TimeHorizon:        "Re-evaluate in 1-2 weeks",
			StopLossSuggestion: "n/a",
			TakeProfitLevels:   nil,
		}
	}
}

// comparables returns the static historical analog set. A learned version
// would rank these by pillar similarity; the fixed set mirrors the playbook
// cases the advisory text references.
func comparables() []domain.Comparable {
	return []domain.Comparable{
		{Ticker: "PLTR", Similarity: 78, Outcome: "+340% over 12 months after institutional accumulation phase", Lessons: "Institutional volume preceded the narrative; early entries were rewarded for patience"},
		{Ticker: "NVDA", Similarity: 65, Outcome: "+220% over 9 months on AI narrative inflection", Lessons: "Narrative confluence with earnings beats sustained the move far past the first breakout"},
		{Ticker: "AEVA", Similarity: 52, Outcome: "-45% fakeout after social-only spike", Lessons: "Viral mentions without institutional flow faded within two weeks"},
	}
}
