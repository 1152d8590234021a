package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type InstitutionalFetcher interface {
	FetchInstitutional(ctx context.Context, ticker string) (domain.InstitutionalBundle, error)
}

type NarrativeFetcher interface {
	FetchNarrative(ctx context.Context, ticker string) (domain.NarrativeBundle, error)
}

type MarketFetcher interface {
	FetchMarket(ctx context.Context, ticker string) (domain.MarketBundle, error)
}

// Engine runs the three pillar fetches in parallel and fuses the scores.
// A failed fetch degrades that pillar to neutral instead of failing the
// evaluation; Evaluate only errors when the ticker is unusable or the
// context ends.
type Engine struct {
	tracer        trace.Tracer
	institutional InstitutionalFetcher
	narrative     NarrativeFetcher
	market        MarketFetcher

	batchPause time.Duration
	now        func() time.Time
}

func New(tracer trace.Tracer, inst InstitutionalFetcher, narr NarrativeFetcher, market MarketFetcher, batchPause time.Duration) *Engine {
	if batchPause <= 0 {
		batchPause = 500 * time.Millisecond
	}
	return &Engine{
		tracer:        tracer,
		institutional: inst,
		narrative:     narr,
		market:        market,
		batchPause:    batchPause,
		now:           time.Now,
	}
}

func (e *Engine) Evaluate(ctx context.Context, ticker string) (domain.EvaluationResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate")
	defer span.End()

	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return domain.EvaluationResult{}, fmt.Errorf("ticker is required")
	}

	var (
		wg     sync.WaitGroup
		inst   domain.InstitutionalBundle
		narr   domain.NarrativeBundle
		market domain.MarketBundle
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		bundle, err := e.institutional.FetchInstitutional(ctx, ticker)
		if err != nil {
			bundle.Volume.Err = err.Error()
			bundle.Options.Err = err.Error()
		}
		inst = bundle
	}()
	go func() {
		defer wg.Done()
		bundle, err := e.narrative.FetchNarrative(ctx, ticker)
		if err != nil {
			// A failed narrative fetch scores as no narrative found.
			bundle = domain.NarrativeBundle{}
		}
		narr = bundle
	}()
	go func() {
		defer wg.Done()
		bundle, err := e.market.FetchMarket(ctx, ticker)
		if err != nil {
			bundle.Technical.Err = err.Error()
		}
		market = bundle
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.EvaluationResult{}, err
	}

	instScore, instDetails := ScoreInstitutional(inst)
	narrScore, narrDetails := ScoreNarrative(narr)
	otherScore, otherDetails := ScoreOtherFactors(market)

	return Fuse(ticker, e.now(), instScore, instDetails, narrScore, narrDetails, otherScore, otherDetails), nil
}

// EvaluateBatch evaluates tickers sequentially with a pause between each to
// stay inside upstream rate limits. Per-ticker failures are skipped; the
// successful results keep input order.
func (e *Engine) EvaluateBatch(ctx context.Context, tickers []string) ([]domain.EvaluationResult, []string) {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate-batch")
	defer span.End()

	results := make([]domain.EvaluationResult, 0, len(tickers))
	var errs []string
	for i, ticker := range tickers {
		if i > 0 {
			select {
			case <-ctx.Done():
				errs = append(errs, "batch: "+ctx.Err().Error())
				return results, errs
			case <-time.After(e.batchPause):
			}
		}
		result, err := e.Evaluate(ctx, ticker)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ticker, err))
			continue
		}
		results = append(results, result)
	}
	return results, errs
}
