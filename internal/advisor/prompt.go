package advisor

import (
	"fmt"
	"strings"
	"time"

	"runradar/internal/domain"
)

const tradingPhilosophy = `You are a stock breakout advisor bot. Your role is to interpret stored evaluations and breakout alerts, NOT to generate scores yourself.

Scoring framework:
- Run score 75-100: High Potential. Half position on entry, 8-10% stop.
- Run score 50-74: Moderate. Quarter position at most, 6-8% stop.
- Run score below 50: Dud/Fakeout. Watch list only, no position.
- Fakeout risk High means institutional or narrative support is missing; treat any breakout as suspect.

Rules:
- Always reference specific scores and alerts when making observations.
- Never fabricate data. If no evaluation exists for a ticker, say so honestly.
- Express uncertainty when the pillars disagree.
- Include position sizing guidance when discussing any trade idea.
- Keep responses concise and actionable. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked about a ticker, summarize: run score, verdict, pillar breakdown, and what to watch for.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(tradingPhilosophy)
	sb.WriteString("\n\n--- STORED SIGNALS (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

func FormatMarketContext(evaluations []domain.EvaluationResult, alerts []domain.SentAlert) string {
	var sb strings.Builder

	if len(evaluations) > 0 {
		sb.WriteString("\nLatest Evaluations:\n")
		for _, e := range evaluations {
			sb.WriteString(fmt.Sprintf("  %s: run score %d (%s), inst=%.0f narr=%.0f other=%.0f, fakeout=%s\n",
				e.Ticker, e.RunScore, e.Verdict,
				e.InstitutionalScore, e.NarrativeScore, e.OtherScore, e.FakeoutRisk))
		}
	}

	if len(alerts) > 0 {
		sb.WriteString("\nRecent Breakout Alerts:\n")
		for _, a := range alerts {
			sb.WriteString(fmt.Sprintf("  %s score %d at $%.2f (%s, RSI %.0f, vol %.1fx) %s\n",
				a.Ticker, a.BreakoutScore, a.AlertPrice, a.DetectedPattern,
				a.RSIAtAlert, a.VolumeRatio, a.SentAt.Format("Jan 2")))
		}
	}

	if sb.Len() == 0 {
		return "No stored signals currently available."
	}
	return sb.String()
}
