package engine

import (
	"fmt"

	"runradar/internal/domain"
)

// Institutional pillar weights. Volume dominates: it is the hardest signal
// to fake at scale.
const (
	instVolumeWeight = 0.50
	instOIWeight     = 0.35
	instBlockWeight  = 0.15
)

// ScoreInstitutional converts an institutional fetch bundle into a 0-100
// pillar score. Missing volume or options data degrades to a neutral 50
// instead of failing the evaluation.
func ScoreInstitutional(b domain.InstitutionalBundle) (float64, domain.InstitutionalDetails) {
	if !b.Volume.OK() || !b.Options.OK() {
		return 50.0, domain.InstitutionalDetails{
			InsufficientData: true,
			KeyInsight:       "Data unavailable",
		}
	}

	volVsAvg := b.Volume.VolumeVsAvgPct
	var volumeScore int
	switch {
	case volVsAvg > 100:
		volumeScore = 100
	case volVsAvg > 50:
		volumeScore = 80
	case volVsAvg > 20:
		volumeScore = 60
	case volVsAvg > 0:
		volumeScore = 40
	default:
		volumeScore = 20
	}

	oiSkew := b.Options.OISkewPct
	var oiScore int
	switch {
	case oiSkew > 20:
		oiScore = 100
	case oiSkew > 10:
		oiScore = 80
	case oiSkew > 0:
		oiScore = 60
	default:
		oiScore = 40
	}

	blocks := b.Blocks.BlockTrades
	var blockScore int
	switch {
	case blocks >= 5:
		blockScore = 100
	case blocks >= 3:
		blockScore = 80
	case blocks >= 1:
		blockScore = 60
	default:
		blockScore = 40
	}

	score := clamp(float64(volumeScore)*instVolumeWeight+
		float64(oiScore)*instOIWeight+
		float64(blockScore)*instBlockWeight, 0, 100)

	var keyInsight, smartMoney string
	switch {
	case volumeScore >= 80 && oiScore >= 60:
		keyInsight = "Strong institutional conviction - volume surge + bullish OI"
		smartMoney = "Heavy accumulation phase detected"
	case volumeScore >= 60:
		keyInsight = "Moderate institutional interest"
		smartMoney = "Building positions gradually"
	case volumeScore < 40:
		keyInsight = "Weak volume - potential liquidity trap"
		smartMoney = "No significant institutional activity"
	default:
		keyInsight = "Mixed institutional signals"
		smartMoney = "Unclear institutional stance"
	}

	participation := "weak"
	if volVsAvg > 50 {
		participation = "strong"
	} else if volVsAvg > 20 {
		participation = "moderate"
	}

	return score, domain.InstitutionalDetails{
		VolumeVsAvgPct:   volVsAvg,
		VolumeScore:      volumeScore,
		VolumeTrend:      b.Volume.VolumeTrend,
		OISkewPct:        oiSkew,
		OIScore:          oiScore,
		OITrend:          b.Options.OITrend,
		BlockTrades:      blocks,
		DarkPoolActivity: b.Blocks.DarkPoolActivity,
		KeyInsight:       keyInsight,
		SmartMoneySignal: smartMoney,
		VolumeContext: fmt.Sprintf("Volume %+.0f%% vs 50-day avg indicates %s institutional participation",
			volVsAvg, participation),
	}
}
