package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"runradar/internal/domain"
	"runradar/internal/ta"

	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

const defaultYahooUA = "runradar/1.0"

// YahooProvider fetches daily OHLCV history and a fundamentals snapshot
// from the Yahoo Finance public endpoints. It serves both the market scan
// (raw bars) and the evaluation engine (derived technical bundle).
type YahooProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   yahooBaseURL,
		userAgent: defaultYahooUA,
		tracer:    tracer,
		limiter:   NewRateLimiter(30, 2*time.Second),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars returns up to lookbackDays of daily bars, oldest first.
func (p *YahooProvider) FetchDailyBars(ctx context.Context, ticker string, lookbackDays int) ([]domain.Bar, error) {
	_, span := p.tracer.Start(ctx, "yahoo.fetch-daily-bars")
	defer span.End()

	if lookbackDays <= 0 {
		lookbackDays = 60
	}
	rangeParam := "3mo"
	if lookbackDays > 90 {
		rangeParam = "1y"
	}
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", p.baseURL, ticker, rangeParam)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}

	var raw yahooChartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", ticker, err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", ticker, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("empty chart for %s", ticker)
	}

	result := raw.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]domain.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		bars = append(bars, domain.Bar{
			Ticker: domain.NormalizeTicker(ticker),
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s", ticker)
	}
	return bars, nil
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				RevenueGrowth struct {
					Raw float64 `json:"raw"`
				} `json:"revenueGrowth"`
				ProfitMargins struct {
					Raw float64 `json:"raw"`
				} `json:"profitMargins"`
			} `json:"financialData"`
			SummaryDetail struct {
				TrailingPE struct {
					Raw float64 `json:"raw"`
				} `json:"trailingPE"`
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
				Beta struct {
					Raw float64 `json:"raw"`
				} `json:"beta"`
			} `json:"summaryDetail"`
			EarningsHistory struct {
				History []struct {
					SurprisePercent struct {
						Raw float64 `json:"raw"`
					} `json:"surprisePercent"`
				} `json:"history"`
			} `json:"earningsHistory"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// FetchMarket assembles the technical bundle from daily history plus a
// fundamentals snapshot. A failed fundamentals call leaves defaults; failed
// history sets the technical Err field so the scorer degrades to neutral.
func (p *YahooProvider) FetchMarket(ctx context.Context, ticker string) (domain.MarketBundle, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-market")
	defer span.End()

	var bundle domain.MarketBundle

	bars, err := p.FetchDailyBars(ctx, ticker, 90)
	if err != nil {
		bundle.Technical.Err = err.Error()
	} else {
		bundle.Technical = deriveTechnical(bars)
	}

	if fund, err := p.fetchFundamentals(ctx, ticker); err == nil {
		bundle.Fundamental = fund
	}
	return bundle, nil
}

func (p *YahooProvider) fetchFundamentals(ctx context.Context, ticker string) (domain.FundamentalData, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData,summaryDetail,earningsHistory",
		p.baseURL, ticker)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return domain.FundamentalData{}, fmt.Errorf("fetch fundamentals for %s: %w", ticker, err)
	}

	var raw yahooSummaryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.FundamentalData{}, fmt.Errorf("parse fundamentals for %s: %w", ticker, err)
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return domain.FundamentalData{}, fmt.Errorf("no fundamentals for %s", ticker)
	}

	result := raw.QuoteSummary.Result[0]
	growth := result.FinancialData.RevenueGrowth.Raw
	margins := result.FinancialData.ProfitMargins.Raw

	beat := false
	for _, h := range result.EarningsHistory.History {
		if h.SurprisePercent.Raw > 0 {
			beat = true
			break
		}
	}

	return domain.FundamentalData{
		IsFundamentallyHealthy: margins > 0 && growth > 0,
		HasGrowthStory:         growth > 0.15,
		EarningsBeat:           beat,
		Metrics: domain.FundamentalMetrics{
			PERatio:       result.SummaryDetail.TrailingPE.Raw,
			RevenueGrowth: growth,
			MarketCap:     result.SummaryDetail.MarketCap.Raw,
			Beta:          result.SummaryDetail.Beta.Raw,
		},
	}, nil
}

// deriveTechnical computes the technical snapshot the other-factors scorer
// consumes from daily closing history.
func deriveTechnical(bars []domain.Bar) domain.TechnicalData {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}
	last := closes[len(closes)-1]

	var tech domain.TechnicalData
	tech.RSI, _ = ta.RSILast(closes, 14)

	sma20, ok20 := ta.SMALast(closes, 20)
	sma50, ok50 := ta.SMALast(closes, 50)
	switch {
	case ok20 && ok50 && last > sma20 && sma20 > sma50:
		tech.Trend = "strong_uptrend"
	case ok20 && last > sma20:
		tech.Trend = "uptrend"
	case ok20 && last >= sma20*0.97:
		tech.Trend = "sideways"
	default:
		tech.Trend = "downtrend"
	}

	window := closes
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	tech.SupportLevel, tech.ResistanceLevel = ta.MinMax(window)

	macd, signal := ta.MACDSeries(closes, 12, 26, 9)
	if n := len(macd); n > 1 {
		cur, prev := macd[n-1]-signal[n-1], macd[n-2]-signal[n-2]
		switch {
		case cur > 0 && prev <= 0:
			tech.MACDSignal = "bullish_crossover"
		case cur > 0:
			tech.MACDSignal = "bullish"
		case cur <= 0 && prev > 0:
			tech.MACDSignal = "bearish_crossover"
		default:
			tech.MACDSignal = "bearish"
		}
	}

	if upper, ok := ta.BollingerUpper(closes, 20, 2); ok && last > upper {
		tech.PatternDetected = "bollinger_breakout"
	} else if tech.Trend == "strong_uptrend" {
		tech.PatternDetected = "trend_continuation"
	} else {
		tech.PatternDetected = "none"
	}

	if avgVol, ok := ta.SMALast(volumes, 20); ok && avgVol > 0 {
		ratio := volumes[len(volumes)-1] / avgVol
		switch {
		case ratio > 1.5:
			tech.FollowThrough = "strong"
		case ratio > 1.0:
			tech.FollowThrough = "moderate"
		default:
			tech.FollowThrough = "weak"
		}
	}

	if tech.RSI > 75 {
		tech.WarningFlags = append(tech.WarningFlags, "overbought RSI")
	}
	if ok20 && last > sma20*1.15 {
		tech.WarningFlags = append(tech.WarningFlags, "extended above 20-day average")
	}
	if tech.FollowThrough == "weak" && tech.PatternDetected == "bollinger_breakout" {
		tech.WarningFlags = append(tech.WarningFlags, "breakout without volume confirmation")
	}
	return tech
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func (p *YahooProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
