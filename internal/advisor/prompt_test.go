package advisor

import (
	"strings"
	"testing"
	"time"

	"runradar/internal/domain"
)

func TestBuildSystemPromptContainsPhilosophy(t *testing.T) {
	prompt := BuildSystemPrompt("some context")
	if !strings.Contains(prompt, "stock breakout advisor") {
		t.Fatal("expected advisor role in prompt")
	}
	if !strings.Contains(prompt, "Run score 75-100") {
		t.Fatal("expected scoring framework in prompt")
	}
	if !strings.Contains(prompt, "STORED SIGNALS") {
		t.Fatal("expected stored signals header in prompt")
	}
	if !strings.Contains(prompt, "some context") {
		t.Fatal("expected market context in prompt")
	}
}

func TestFormatMarketContextWithEvaluationsAndAlerts(t *testing.T) {
	evals := []domain.EvaluationResult{
		{
			Ticker:             "NVDA",
			RunScore:           82,
			Verdict:            domain.VerdictHighPotential,
			InstitutionalScore: 85,
			NarrativeScore:     80,
			OtherScore:         78,
			FakeoutRisk:        domain.FakeoutLow,
		},
	}
	alerts := []domain.SentAlert{
		{
			Ticker:          "PLTR",
			BreakoutScore:   140,
			AlertPrice:      32.50,
			DetectedPattern: "strong_volume_breakout",
			RSIAtAlert:      68,
			VolumeRatio:     2.3,
			SentAt:          time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC),
		},
	}

	ctx := FormatMarketContext(evals, alerts)
	if !strings.Contains(ctx, "NVDA: run score 82 (High Potential)") {
		t.Fatalf("expected NVDA evaluation line, got: %s", ctx)
	}
	if !strings.Contains(ctx, "fakeout=Low") {
		t.Fatal("expected fakeout risk in context")
	}
	if !strings.Contains(ctx, "PLTR score 140 at $32.50") {
		t.Fatalf("expected PLTR alert line, got: %s", ctx)
	}
	if !strings.Contains(ctx, "vol 2.3x") {
		t.Fatal("expected volume ratio in context")
	}
}

func TestFormatMarketContextEmpty(t *testing.T) {
	ctx := FormatMarketContext(nil, nil)
	if ctx != "No stored signals currently available." {
		t.Fatalf("expected fallback text, got: %s", ctx)
	}
}

func TestFormatMarketContextEvaluationsOnly(t *testing.T) {
	evals := []domain.EvaluationResult{
		{Ticker: "AMD", RunScore: 55, Verdict: domain.VerdictModerate, FakeoutRisk: domain.FakeoutMedium},
	}
	ctx := FormatMarketContext(evals, nil)
	if !strings.Contains(ctx, "AMD: run score 55 (Moderate)") {
		t.Fatalf("expected AMD line, got: %s", ctx)
	}
	if strings.Contains(ctx, "Recent Breakout Alerts") {
		t.Fatal("should not contain alerts section when no alerts")
	}
}
