package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	xSearchBaseURL    = "https://api.twitter.com/2"
	newsSearchBaseURL = "https://newsapi.org/v2"

	viralLikeThreshold = 1000
	defaultSearchSize  = 50
)

// Keyword vocabularies for the narrative counts. The scoring itself happens
// downstream; this provider only produces counts and ratios.
var (
	upgradeKeywords  = []string{"upgrade", "price target raised", "initiated", "outperform", "overweight", "buy rating"}
	positiveKeywords = []string{"beat", "record", "surge", "growth", "raised guidance", "strong demand", "expansion", "breakout"}
	negativeKeywords = []string{"miss", "downgrade", "cut", "lawsuit", "investigation", "layoffs", "warning", "weak"}
	strongEarnings   = []string{"beat", "raised guidance", "record revenue", "margin expansion", "accelerating"}
	weakEarnings     = []string{"miss", "lowered guidance", "declining", "margin compression", "slowing"}
)

// NarrativeProvider assembles the narrative bundle from an X recent-search
// endpoint and a news-search endpoint. Each channel degrades independently:
// a failed channel leaves its sub-signal zeroed.
type NarrativeProvider struct {
	client      *http.Client
	xBaseURL    string
	newsBaseURL string
	xToken      string
	newsKey     string
	tracer      trace.Tracer
	limiter     *RateLimiter
}

func NewNarrativeProvider(tracer trace.Tracer, xToken, newsKey string) *NarrativeProvider {
	return &NarrativeProvider{
		client:      &http.Client{Timeout: 20 * time.Second},
		xBaseURL:    xSearchBaseURL,
		newsBaseURL: newsSearchBaseURL,
		xToken:      xToken,
		newsKey:     newsKey,
		tracer:      tracer,
		limiter:     NewRateLimiter(10, 6*time.Second),
	}
}

// FetchNarrative gathers all three narrative channels for one ticker.
func (p *NarrativeProvider) FetchNarrative(ctx context.Context, ticker string) (domain.NarrativeBundle, error) {
	_, span := p.tracer.Start(ctx, "narrative.fetch")
	defer span.End()

	var bundle domain.NarrativeBundle

	if x, err := p.fetchXSignal(ctx, ticker); err == nil {
		bundle.X = x
	}

	headlines, err := p.fetchHeadlines(ctx, ticker)
	if err != nil {
		return bundle, nil
	}
	bundle.News = countNewsSignals(headlines)
	bundle.Earnings = countEarningsSignals(headlines)
	return bundle, nil
}

type xSearchResponse struct {
	Data []struct {
		Text          string `json:"text"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// fetchXSignal summarizes recent cashtag mentions into engagement metrics.
func (p *NarrativeProvider) fetchXSignal(ctx context.Context, ticker string) (domain.XSignal, error) {
	query := url.QueryEscape(fmt.Sprintf("$%s -is:retweet lang:en", ticker))
	u := fmt.Sprintf("%s/tweets/search/recent?query=%s&max_results=%d&tweet.fields=public_metrics",
		strings.TrimRight(p.xBaseURL, "/"), query, defaultSearchSize)

	body, err := p.doRequest(ctx, u, "Bearer "+p.xToken)
	if err != nil {
		return domain.XSignal{}, fmt.Errorf("x search for %s: %w", ticker, err)
	}

	var raw xSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.XSignal{}, fmt.Errorf("parse x search for %s: %w", ticker, err)
	}
	if len(raw.Data) == 0 {
		return domain.XSignal{}, nil
	}

	signal := domain.XSignal{Found: true, TweetCount: len(raw.Data)}
	var weighted float64
	for _, tweet := range raw.Data {
		m := tweet.PublicMetrics
		signal.TotalLikes += m.LikeCount
		if m.LikeCount >= viralLikeThreshold {
			signal.ViralTweetCount++
		}
		weighted += float64(m.LikeCount) + 2*float64(m.RetweetCount) + 0.5*float64(m.ReplyCount)
	}
	// Engagement score normalizes weighted interactions per tweet to ~0-100.
	signal.EngagementScore = clampScore(weighted / float64(len(raw.Data)) / 10)
	signal.IsViral = signal.ViralTweetCount >= 2 || signal.EngagementScore > 85
	return signal, nil
}

type newsSearchResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
}

func (p *NarrativeProvider) fetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	u := fmt.Sprintf("%s/everything?q=%s&language=en&sortBy=publishedAt&pageSize=%d&apiKey=%s",
		strings.TrimRight(p.newsBaseURL, "/"), url.QueryEscape(ticker+" stock"), defaultSearchSize, p.newsKey)

	body, err := p.doRequest(ctx, u, "")
	if err != nil {
		return nil, fmt.Errorf("news search for %s: %w", ticker, err)
	}

	var raw newsSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse news search for %s: %w", ticker, err)
	}

	headlines := make([]string, 0, len(raw.Articles))
	for _, article := range raw.Articles {
		text := strings.ToLower(strings.TrimSpace(article.Title + " " + article.Description))
		if text != "" {
			headlines = append(headlines, text)
		}
	}
	return headlines, nil
}

// countNewsSignals tallies framing keywords across headlines.
func countNewsSignals(headlines []string) domain.NewsSignal {
	var signal domain.NewsSignal
	signal.NewsMentions = len(headlines)
	for _, h := range headlines {
		if containsAny(h, upgradeKeywords) {
			signal.UpgradeMentions++
		}
		if containsAny(h, positiveKeywords) {
			signal.PositiveSignals++
		}
		if containsAny(h, negativeKeywords) {
			signal.NegativeSignals++
		}
	}
	total := signal.PositiveSignals + signal.NegativeSignals
	if total > 0 {
		signal.SentimentRatio = float64(signal.PositiveSignals) / float64(total)
	}
	return signal
}

// countEarningsSignals tallies earnings-inflection keywords.
func countEarningsSignals(headlines []string) domain.EarningsSignal {
	var signal domain.EarningsSignal
	for _, h := range headlines {
		if !strings.Contains(h, "earnings") && !strings.Contains(h, "guidance") && !strings.Contains(h, "revenue") {
			continue
		}
		signal.HasEarningsData = true
		if containsAny(h, strongEarnings) {
			signal.StrongSignals++
		}
		if containsAny(h, weakEarnings) {
			signal.WeakSignals++
		}
	}
	total := signal.StrongSignals + signal.WeakSignals
	if total > 0 {
		signal.InflectionRatio = float64(signal.StrongSignals) / float64(total)
	}
	return signal
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (p *NarrativeProvider) doRequest(ctx context.Context, url, authorization string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
