package scanner

import (
	"fmt"

	"runradar/internal/domain"
)

// humanizeAlert renders the delivery text for a qualified candidate: the
// dominant score tier, an RSI momentum descriptor, and a volume descriptor.
func humanizeAlert(s *domain.BreakoutStock) string {
	var lead string
	switch {
	case s.BreakoutScore >= 130:
		lead = fmt.Sprintf("%s is showing a strong volume breakout at $%.2f", s.Ticker, s.ClosePrice)
	case s.BreakoutScore >= 100:
		lead = fmt.Sprintf("%s is in a momentum breakout at $%.2f", s.Ticker, s.ClosePrice)
	default:
		lead = fmt.Sprintf("%s triggered a technical breakout at $%.2f", s.Ticker, s.ClosePrice)
	}

	var momentum string
	switch {
	case s.RSI > 70:
		momentum = fmt.Sprintf("RSI at %.0f signals overbought momentum - watch for exhaustion", s.RSI)
	case s.RSI > 60:
		momentum = fmt.Sprintf("RSI at %.0f shows strong momentum with room to run", s.RSI)
	case s.RSI < 40:
		momentum = fmt.Sprintf("RSI at %.0f suggests an early move off a base", s.RSI)
	default:
		momentum = fmt.Sprintf("RSI at %.0f is neutral", s.RSI)
	}

	var volume string
	switch {
	case s.VolumeRatio > 2.0:
		volume = fmt.Sprintf("volume running %.1fx average - institutions likely participating", s.VolumeRatio)
	case s.VolumeRatio > 1.5:
		volume = fmt.Sprintf("volume %.1fx above average confirms the move", s.VolumeRatio)
	default:
		volume = "volume is unremarkable, treat with caution"
	}

	return fmt.Sprintf("%s. %s, %s.", lead, momentum, volume)
}
