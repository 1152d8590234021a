package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Universe supplies the ordered list of tickers to scan.
type Universe interface {
	Tickers(ctx context.Context) ([]string, error)
}

// HistoryProvider supplies daily OHLCV history for a ticker, oldest first.
type HistoryProvider interface {
	FetchDailyBars(ctx context.Context, ticker string, lookbackDays int) ([]domain.Bar, error)
}

const (
	defaultLookbackDays = 60
	topCandidates       = 10
)

// Scanner walks the ticker universe sequentially with a pacing delay and
// accumulates qualified breakout candidates. Per-ticker failures are
// recorded and never abort the pass.
type Scanner struct {
	tracer   trace.Tracer
	universe Universe
	history  HistoryProvider
	pause    time.Duration
}

func New(tracer trace.Tracer, universe Universe, history HistoryProvider, pause time.Duration) *Scanner {
	if pause <= 0 {
		pause = 500 * time.Millisecond
	}
	return &Scanner{tracer: tracer, universe: universe, history: history, pause: pause}
}

// Scan runs one full pass and returns the candidates ranked by breakout
// score, truncated to the top ten. Dedup against already-alerted tickers is
// the caller's concern.
func (s *Scanner) Scan(ctx context.Context) ([]domain.BreakoutStock, int, []string, error) {
	ctx, span := s.tracer.Start(ctx, "scanner.scan")
	defer span.End()

	tickers, err := s.universe.Tickers(ctx)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load scan universe: %w", err)
	}

	var (
		candidates []domain.BreakoutStock
		errs       []string
		scanned    int
	)
	for i, ticker := range tickers {
		if i > 0 {
			select {
			case <-ctx.Done():
				errs = append(errs, "scan: "+ctx.Err().Error())
				return rank(candidates), scanned, errs, nil
			case <-time.After(s.pause):
			}
		}
		bars, err := s.history.FetchDailyBars(ctx, ticker, defaultLookbackDays)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ticker, err))
			continue
		}
		scanned++
		if stock, ok := ComputeBreakout(ticker, bars); ok {
			candidates = append(candidates, *stock)
		}
	}
	return rank(candidates), scanned, errs, nil
}

func rank(candidates []domain.BreakoutStock) []domain.BreakoutStock {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].BreakoutScore > candidates[j].BreakoutScore
	})
	if len(candidates) > topCandidates {
		candidates = candidates[:topCandidates]
	}
	return candidates
}
