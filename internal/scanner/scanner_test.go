package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func barsFrom(closes, volumes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		bars[i] = domain.Bar{
			Time:   day.AddDate(0, 0, i),
			Open:   closes[i],
			High:   closes[i],
			Low:    closes[i],
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return bars
}

// fullBreakoutBars is a series hitting every point contribution: the last
// close clears the upper band, the last move is far above 3%, RSI maxes out,
// the last volume is near double its average, and recent volatility is
// expanded against the full window.
func fullBreakoutBars() []domain.Bar {
	closes := make([]float64, 0, 20)
	volumes := make([]float64, 0, 20)
	for i := 0; i < 15; i++ {
		closes = append(closes, 100)
		volumes = append(volumes, 1_000_000)
	}
	closes = append(closes, 102, 104, 106, 108, 118)
	volumes = append(volumes, 1_000_000, 1_000_000, 1_000_000, 1_000_000, 2_000_000)
	return barsFrom(closes, volumes)
}

func flatBars(n int) []domain.Bar {
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1_000_000
	}
	return barsFrom(closes, volumes)
}

func TestComputeBreakoutFullScore(t *testing.T) {
	t.Parallel()

	stock, ok := ComputeBreakout("tsla", fullBreakoutBars())
	if !ok {
		t.Fatal("expected a qualified candidate")
	}
	if stock.BreakoutScore != 180 {
		t.Fatalf("expected every contribution (180), got %d", stock.BreakoutScore)
	}
	if stock.Ticker != "TSLA" {
		t.Fatalf("expected normalized ticker, got %q", stock.Ticker)
	}
	if stock.SetupType != "strong_volume_breakout" {
		t.Fatalf("unexpected setup type %q", stock.SetupType)
	}
	if stock.RSI != 100 {
		t.Fatalf("expected RSI 100 for an all-gains window, got %.2f", stock.RSI)
	}
	if stock.VolumeRatio <= 1.5 {
		t.Fatalf("expected a volume surge, got ratio %.2f", stock.VolumeRatio)
	}
	if !strings.Contains(stock.HumanizedAlert, "strong volume breakout") {
		t.Fatalf("unexpected alert text: %s", stock.HumanizedAlert)
	}
}

func TestComputeBreakoutShortHistoryYieldsNoCandidate(t *testing.T) {
	t.Parallel()

	if _, ok := ComputeBreakout("AAPL", flatBars(15)); ok {
		t.Fatal("expected no candidate for 15 bars of history")
	}
}

func TestComputeBreakoutFlatSeriesMissesGate(t *testing.T) {
	t.Parallel()

	if _, ok := ComputeBreakout("AAPL", flatBars(40)); ok {
		t.Fatal("expected a flat series to score below the gate")
	}
}

func TestComputeBreakoutZeroVolumeAverage(t *testing.T) {
	t.Parallel()

	bars := fullBreakoutBars()
	for i := range bars {
		bars[i].Volume = 0
	}
	stock, ok := ComputeBreakout("AAPL", bars)
	// Gate still clears without the volume points: 70+40+20+20 = 150.
	if !ok {
		t.Fatal("expected the candidate to survive without volume data")
	}
	if stock.VolumeRatio != 0 {
		t.Fatalf("expected zero ratio for zero average volume, got %.2f", stock.VolumeRatio)
	}
	if stock.BreakoutScore != 150 {
		t.Fatalf("expected 150 without volume points, got %d", stock.BreakoutScore)
	}
}

func TestFilterRecentIsOrderPreservingSetDifference(t *testing.T) {
	t.Parallel()

	candidates := []domain.BreakoutStock{
		{Ticker: "AAPL", BreakoutScore: 150},
		{Ticker: "MSFT", BreakoutScore: 120},
		{Ticker: "NVDA", BreakoutScore: 90},
	}
	kept, suppressed := FilterRecent(candidates, map[string]bool{"MSFT": true})
	if suppressed != 1 {
		t.Fatalf("expected one suppressed, got %d", suppressed)
	}
	if len(kept) != 2 || kept[0].Ticker != "AAPL" || kept[1].Ticker != "NVDA" {
		t.Fatalf("unexpected kept set: %+v", kept)
	}

	kept, suppressed = FilterRecent(candidates, nil)
	if suppressed != 0 || len(kept) != 3 {
		t.Fatalf("empty recent set must keep everything, got %d kept", len(kept))
	}
}

type universeStub struct {
	tickers []string
	err     error
}

func (u *universeStub) Tickers(_ context.Context) ([]string, error) { return u.tickers, u.err }

type historyStub struct {
	bars map[string][]domain.Bar
	errs map[string]error
}

func (h *historyStub) FetchDailyBars(_ context.Context, ticker string, _ int) ([]domain.Bar, error) {
	if err := h.errs[ticker]; err != nil {
		return nil, err
	}
	return h.bars[ticker], nil
}

func TestScanIsolatesPerTickerFailures(t *testing.T) {
	t.Parallel()

	s := New(testTracer(),
		&universeStub{tickers: []string{"AAPL", "BROKEN", "TSLA"}},
		&historyStub{
			bars: map[string][]domain.Bar{
				"AAPL": flatBars(40),
				"TSLA": fullBreakoutBars(),
			},
			errs: map[string]error{"BROKEN": errors.New("upstream 500")},
		},
		time.Millisecond,
	)

	candidates, scanned, errs, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scanned != 2 {
		t.Fatalf("expected two tickers scanned, got %d", scanned)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "BROKEN") {
		t.Fatalf("expected the broken ticker recorded, got %v", errs)
	}
	if len(candidates) != 1 || candidates[0].Ticker != "TSLA" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
}

func TestScanRanksAndTruncatesToTopTen(t *testing.T) {
	t.Parallel()

	tickers := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	bars := make(map[string][]domain.Bar, len(tickers))
	for _, tk := range tickers {
		bars[tk] = fullBreakoutBars()
	}
	s := New(testTracer(), &universeStub{tickers: tickers}, &historyStub{bars: bars}, time.Millisecond)

	candidates, scanned, errs, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scanned != len(tickers) {
		t.Fatalf("expected all tickers scanned, got %d", scanned)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(candidates) != 10 {
		t.Fatalf("expected the list truncated to ten, got %d", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].BreakoutScore > candidates[i-1].BreakoutScore {
			t.Fatal("candidates are not ranked by score")
		}
	}
}
