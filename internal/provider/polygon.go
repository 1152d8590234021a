package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const polygonBaseURL = "https://api.polygon.io"

// Block-trade detection: prints at or above this share count within the
// latest session count as institutional blocks.
const blockTradeShares = 10_000

// PolygonProvider fetches institutional activity data (volume vs average,
// options open-interest skew, block trades) from the Polygon REST API.
type PolygonProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewPolygonProvider creates a provider rate limited to the free-tier
// 5 requests per minute.
func NewPolygonProvider(tracer trace.Tracer, apiKey string) *PolygonProvider {
	return &PolygonProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: polygonBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(5, 12*time.Second),
	}
}

type polygonAgg struct {
	Volume float64 `json:"v"`
	Close  float64 `json:"c"`
}

type polygonAggsResponse struct {
	Results []polygonAgg `json:"results"`
}

type polygonOptionsResponse struct {
	Results []struct {
		Details struct {
			ContractType string `json:"contract_type"`
		} `json:"details"`
		OpenInterest float64 `json:"open_interest"`
	} `json:"results"`
}

type polygonTradesResponse struct {
	Results []struct {
		Size float64 `json:"size"`
	} `json:"results"`
}

// FetchInstitutional assembles the institutional bundle for one ticker.
// Sub-signal failures are recorded in the bundle's Err fields rather than
// returned, so a partial fetch still scores.
func (p *PolygonProvider) FetchInstitutional(ctx context.Context, ticker string) (domain.InstitutionalBundle, error) {
	_, span := p.tracer.Start(ctx, "polygon.fetch-institutional")
	defer span.End()

	var bundle domain.InstitutionalBundle

	volume, err := p.fetchVolume(ctx, ticker)
	if err != nil {
		bundle.Volume.Err = err.Error()
	} else {
		bundle.Volume = volume
	}

	options, err := p.fetchOptionsSkew(ctx, ticker)
	if err != nil {
		bundle.Options.Err = err.Error()
	} else {
		bundle.Options = options
	}

	blocks, err := p.fetchBlockTrades(ctx, ticker)
	if err == nil {
		bundle.Blocks = blocks
	}

	return bundle, nil
}

// fetchVolume compares the latest session volume against its 50-day average.
func (p *PolygonProvider) fetchVolume(ctx context.Context, ticker string) (domain.VolumeData, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -90)
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=120&apiKey=%s",
		p.baseURL, ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), p.apiKey)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return domain.VolumeData{}, fmt.Errorf("fetch volume for %s: %w", ticker, err)
	}

	var raw polygonAggsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.VolumeData{}, fmt.Errorf("parse volume for %s: %w", ticker, err)
	}
	if len(raw.Results) < 2 {
		return domain.VolumeData{}, fmt.Errorf("not enough volume history for %s", ticker)
	}

	latest := raw.Results[len(raw.Results)-1].Volume
	window := raw.Results[:len(raw.Results)-1]
	if len(window) > 50 {
		window = window[len(window)-50:]
	}
	var sum float64
	for _, agg := range window {
		sum += agg.Volume
	}
	avg := sum / float64(len(window))
	if avg <= 0 {
		return domain.VolumeData{}, fmt.Errorf("zero average volume for %s", ticker)
	}

	pct := (latest - avg) / avg * 100
	trend := "stable"
	if pct > 20 {
		trend = "increasing"
	} else if pct < -20 {
		trend = "decreasing"
	}
	return domain.VolumeData{VolumeVsAvgPct: pct, VolumeTrend: trend}, nil
}

// fetchOptionsSkew summarizes call-vs-put open interest into a skew percent.
func (p *PolygonProvider) fetchOptionsSkew(ctx context.Context, ticker string) (domain.OptionsData, error) {
	url := fmt.Sprintf("%s/v3/snapshot/options/%s?limit=250&apiKey=%s", p.baseURL, ticker, p.apiKey)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return domain.OptionsData{}, fmt.Errorf("fetch options for %s: %w", ticker, err)
	}

	var raw polygonOptionsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.OptionsData{}, fmt.Errorf("parse options for %s: %w", ticker, err)
	}

	var callOI, putOI float64
	for _, contract := range raw.Results {
		switch contract.Details.ContractType {
		case "call":
			callOI += contract.OpenInterest
		case "put":
			putOI += contract.OpenInterest
		}
	}
	total := callOI + putOI
	if total <= 0 {
		return domain.OptionsData{}, fmt.Errorf("no open interest for %s", ticker)
	}

	skew := (callOI - putOI) / total * 100
	trend := "neutral"
	if skew > 10 {
		trend = "bullish"
	} else if skew < -10 {
		trend = "bearish"
	}
	return domain.OptionsData{OISkewPct: skew, OITrend: trend}, nil
}

// fetchBlockTrades counts large prints in the latest session.
func (p *PolygonProvider) fetchBlockTrades(ctx context.Context, ticker string) (domain.BlockData, error) {
	url := fmt.Sprintf("%s/v3/trades/%s?limit=1000&sort=timestamp&order=desc&apiKey=%s", p.baseURL, ticker, p.apiKey)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return domain.BlockData{}, fmt.Errorf("fetch trades for %s: %w", ticker, err)
	}

	var raw polygonTradesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.BlockData{}, fmt.Errorf("parse trades for %s: %w", ticker, err)
	}

	count := 0
	for _, trade := range raw.Results {
		if trade.Size >= blockTradeShares {
			count++
		}
	}
	activity := "normal"
	if count >= 5 {
		activity = "high"
	} else if count >= 2 {
		activity = "elevated"
	}
	return domain.BlockData{BlockTrades: count, DarkPoolActivity: activity}, nil
}

func (p *PolygonProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("polygon API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
