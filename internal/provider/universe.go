package provider

import (
	"context"

	"runradar/internal/domain"
)

// StaticUniverse serves a fixed, ordered ticker list for the market scan.
type StaticUniverse struct {
	tickers []string
}

// NewStaticUniverse copies tickers, falling back to the built-in large-cap
// universe when none are configured.
func NewStaticUniverse(tickers []string) *StaticUniverse {
	if len(tickers) == 0 {
		tickers = domain.FallbackUniverse
	}
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if n := domain.NormalizeTicker(t); n != "" {
			out = append(out, n)
		}
	}
	return &StaticUniverse{tickers: out}
}

func (u *StaticUniverse) Tickers(_ context.Context) ([]string, error) {
	return append([]string(nil), u.tickers...), nil
}
