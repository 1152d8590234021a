package domain

import (
	"strings"
	"time"
)

// Bar is a single OHLCV sample for a ticker. Scan input is ordered
// oldest-first with the most recent bar last.
type Bar struct {
	Ticker string    `json:"ticker"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// NormalizeTicker uppercases and trims a user-supplied symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FallbackUniverse is the built-in large-cap scan universe used when no
// universe source is configured. Ordering is deliberate: the scan walks it
// front to back.
var FallbackUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AVGO", "BRK-B", "WMT",
	"JPM", "V", "XOM", "UNH", "ORCL", "MA", "HD", "PG", "JNJ", "BAC", "ABBV", "KO",
	"MRK", "CVX", "LLY", "PEP", "COST", "TMO", "ABT", "MCD", "ADBE", "WFC", "CRM",
	"ACN", "NKE", "CMCSA", "TXN", "AMD", "PM", "NEE", "RTX", "QCOM", "HON", "AMGN",
	"UPS", "LOW", "INTU", "SPGI", "IBM", "GS", "CAT", "MDT", "INTC", "GILD", "BKNG",
	"BLK", "TJX", "DUK", "VZ", "C", "TGT", "DE", "PFE", "SBUX", "MS", "CI", "LMT",
	"AXP", "AMAT", "PLD", "SYK", "CB", "ETN", "COP", "SCHW", "PANW", "ADI", "REGN",
	"MMC", "BSX", "KLAC", "BX", "LRCX", "SNPS", "ADP", "SLB", "FI", "ANET", "MU",
	"MDLZ", "MO", "SO", "AON", "D", "CDNS", "BA", "SHW", "TMUS", "CL", "ITW", "ELV",
	"EQIX", "NFLX", "EOG", "PSA", "WM", "ZTS", "ICE", "NXPI", "GD", "HCA", "TFC",
}

// UniverseSet returns the fallback universe as a membership set, used by the
// advisor to spot ticker mentions in free text.
func UniverseSet() map[string]struct{} {
	set := make(map[string]struct{}, len(FallbackUniverse))
	for _, t := range FallbackUniverse {
		set[t] = struct{}{}
	}
	return set
}
