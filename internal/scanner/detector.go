package scanner

import (
	"runradar/internal/domain"
	"runradar/internal/ta"
)

// Point contributions and the acceptance gate for a breakout candidate.
const (
	pointsBollingerBreak = 70
	pointsVolumeSurge    = 30
	pointsMomentum       = 40
	pointsRSIBonus       = 20
	pointsVolExpansion   = 20

	acceptanceGate = 80

	rsiPeriod       = 14
	bollingerPeriod = 20
	bollingerStdDev = 2.0
	volumePeriod    = 20
	volSpikeWindow  = 5
)

// ComputeBreakout accumulates the point-based breakout score for one ticker
// from its price/volume history (oldest first, most recent last). It returns
// (nil, false) when the history is too short or the score misses the gate.
func ComputeBreakout(ticker string, bars []domain.Bar) (*domain.BreakoutStock, bool) {
	if len(bars) < bollingerPeriod {
		return nil, false
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	last := closes[len(closes)-1]
	lastVolume := volumes[len(volumes)-1]

	rsi, ok := ta.RSILast(closes, rsiPeriod)
	if !ok {
		return nil, false
	}

	score := 0

	upperBand, _ := ta.BollingerUpper(closes, bollingerPeriod, bollingerStdDev)
	if last > upperBand {
		score += pointsBollingerBreak
	}

	avgVolume, _ := ta.SMALast(volumes, volumePeriod)
	volumeRatio := 0.0
	if avgVolume > 0 {
		volumeRatio = lastVolume / avgVolume
	}
	if volumeRatio > 1.5 {
		score += pointsVolumeSurge
	}

	prev := closes[len(closes)-2]
	priceChangePct := 0.0
	if prev != 0 {
		priceChangePct = (last - prev) / prev * 100
	}
	if priceChangePct > 3 {
		score += pointsMomentum
	}

	if rsi > 65 {
		score += pointsRSIBonus
	}

	recentStd, _ := ta.StdLast(closes, volSpikeWindow)
	_, fullStd := ta.MeanStd(closes)
	if fullStd > 0 && recentStd > 1.2*fullStd {
		score += pointsVolExpansion
	}

	if score < acceptanceGate {
		return nil, false
	}

	stock := &domain.BreakoutStock{
		Ticker:        domain.NormalizeTicker(ticker),
		ClosePrice:    last,
		RSI:           rsi,
		BreakoutScore: score,
		Volume:        lastVolume,
		AvgVolume:     avgVolume,
		VolumeRatio:   volumeRatio,
		SetupType:     setupType(score),
	}
	stock.HumanizedAlert = humanizeAlert(stock)
	return stock, true
}

func setupType(score int) string {
	switch {
	case score >= 130:
		return "strong_volume_breakout"
	case score >= 100:
		return "momentum_breakout"
	default:
		return "technical_breakout"
	}
}
