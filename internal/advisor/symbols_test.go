package advisor

import (
	"testing"
)

func TestExtractTickersSingleMention(t *testing.T) {
	got := ExtractTickers("What about NVDA?")
	if len(got) != 1 || got[0] != "NVDA" {
		t.Fatalf("expected [NVDA], got %v", got)
	}
}

func TestExtractTickersMultipleMentions(t *testing.T) {
	got := ExtractTickers("Compare AAPL and MSFT")
	if len(got) != 2 {
		t.Fatalf("expected 2 tickers, got %v", got)
	}
	tickers := map[string]bool{}
	for _, s := range got {
		tickers[s] = true
	}
	if !tickers["AAPL"] || !tickers["MSFT"] {
		t.Fatalf("expected AAPL and MSFT, got %v", got)
	}
}

func TestExtractTickersNoMention(t *testing.T) {
	got := ExtractTickers("What looks good right now?")
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestExtractTickersLowercaseIgnored(t *testing.T) {
	// "so" and "ma" collide with tickers SO and MA; only uppercase counts.
	got := ExtractTickers("so what do you think ma?")
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestExtractTickersCashtagAnyCase(t *testing.T) {
	got := ExtractTickers("thoughts on $pltr?")
	if len(got) != 1 || got[0] != "PLTR" {
		t.Fatalf("expected [PLTR], got %v", got)
	}
}

func TestExtractTickersCashtagOutsideUniverse(t *testing.T) {
	got := ExtractTickers("is $GME running again?")
	if len(got) != 1 || got[0] != "GME" {
		t.Fatalf("expected [GME], got %v", got)
	}
}

func TestExtractTickersDeduplication(t *testing.T) {
	got := ExtractTickers("TSLA TSLA TSLA to the moon TSLA")
	if len(got) != 1 || got[0] != "TSLA" {
		t.Fatalf("expected [TSLA], got %v", got)
	}
}

func TestExtractTickersInSentence(t *testing.T) {
	got := ExtractTickers("Should I buy AMD or stick with INTC?")
	if len(got) != 2 {
		t.Fatalf("expected 2 tickers, got %v", got)
	}
	tickers := map[string]bool{}
	for _, s := range got {
		tickers[s] = true
	}
	if !tickers["AMD"] || !tickers["INTC"] {
		t.Fatalf("expected AMD and INTC, got %v", got)
	}
}
