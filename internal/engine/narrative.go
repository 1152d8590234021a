package engine

import (
	"fmt"
	"strings"

	"runradar/internal/domain"
)

// Narrative component caps: X engagement 0-30, news framing 0-20, earnings
// inflection 0-20, plus a confluence bonus when all three channels align.

// xComponent is the social-engagement contribution.
func xComponent(x domain.XSignal) float64 {
	switch {
	case x.IsViral:
		return 30
	case x.EngagementScore > 70:
		return 25
	case x.EngagementScore > 50:
		return 20
	case x.EngagementScore > 30:
		return 15
	default:
		v := x.EngagementScore / 4
		if v < 5 {
			return 5
		}
		return v
	}
}

// framingComponent bands the analyst/news framing shift from the sentiment
// ratio and the upgrade mention count.
func framingComponent(n domain.NewsSignal) (int, string) {
	switch {
	case n.SentimentRatio > 0.7 && n.UpgradeMentions >= 2:
		return 20, "strong_positive"
	case n.SentimentRatio > 0.6 && n.UpgradeMentions >= 1:
		return 15, "positive"
	case n.SentimentRatio > 0.5:
		return 10, "neutral_positive"
	default:
		return 5, "mixed"
	}
}

// earningsComponent bands the earnings-narrative inflection from strong/weak
// keyword counts.
func earningsComponent(e domain.EarningsSignal) (int, string) {
	if !e.HasEarningsData || e.StrongSignals+e.WeakSignals == 0 {
		return 0, "neutral"
	}
	switch {
	case e.InflectionRatio > 0.8 && e.StrongSignals >= 3:
		return 20, "strong_positive"
	case e.InflectionRatio > 0.6 && e.StrongSignals >= 2:
		return 15, "positive"
	case e.InflectionRatio > 0.5:
		return 10, "slight_positive"
	default:
		score := 10 - e.WeakSignals*2
		if score < 0 {
			score = 0
		}
		return score, "mixed"
	}
}

// ScoreNarrative converts a narrative fetch bundle into a 0-100 pillar
// score. Three independent channels contribute bounded points; alignment
// across all of them earns a confluence bonus.
func ScoreNarrative(b domain.NarrativeBundle) (float64, domain.NarrativeDetails) {
	xc := xComponent(b.X)
	fc, framingShift := framingComponent(b.News)
	ec, inflection := earningsComponent(b.Earnings)

	bonus := 0
	if xc >= 20 && fc >= 15 && ec >= 15 {
		bonus = 15
	} else if xc >= 15 && fc >= 10 && ec >= 10 {
		bonus = 10
	}

	total := clamp(xc+float64(fc)+float64(ec)+float64(bonus), 0, 100)

	var verdict string
	switch {
	case total >= 75:
		verdict = "viral_narrative"
	case total >= 60:
		verdict = "strong_narrative"
	case total >= 45:
		verdict = "building_narrative"
	case total >= 30:
		verdict = "weak_narrative"
	default:
		verdict = "no_narrative"
	}

	return total, domain.NarrativeDetails{
		TotalScore:        total,
		Verdict:           verdict,
		XComponent:        xc,
		FramingComponent:  fc,
		EarningsComponent: ec,
		ConfluenceBonus:   bonus,
		FramingShift:      framingShift,
		Inflection:        inflection,
		KeyInsight:        narrativeInsight(b, verdict, inflection),
		X:                 b.X,
		News:              b.News,
		Earnings:          b.Earnings,
	}
}

func narrativeInsight(b domain.NarrativeBundle, verdict, inflection string) string {
	var parts []string

	switch verdict {
	case "viral_narrative":
		parts = append(parts, "Viral momentum across all channels")
	case "strong_narrative":
		parts = append(parts, "Strong narrative developing")
	case "building_narrative":
		parts = append(parts, "Narrative building but early")
	default:
		parts = append(parts, "Limited narrative traction")
	}

	if b.X.IsViral {
		parts = append(parts, fmt.Sprintf("%d viral tweets with %d likes", b.X.ViralTweetCount, b.X.TotalLikes))
	} else if b.X.TweetCount > 50 {
		parts = append(parts, fmt.Sprintf("%d mentions with solid engagement", b.X.TweetCount))
	}

	if b.News.UpgradeMentions > 0 {
		parts = append(parts, fmt.Sprintf("%d analyst upgrades", b.News.UpgradeMentions))
	}

	switch inflection {
	case "strong_positive":
		parts = append(parts, "Strong earnings beat with raised guidance")
	case "positive":
		parts = append(parts, "Positive earnings narrative")
	}

	return strings.Join(parts, " | ")
}
