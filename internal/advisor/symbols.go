package advisor

import (
	"strings"

	"runradar/internal/domain"
)

// ExtractTickers scans the user message for stock ticker mentions. A bare
// word counts only when it is already uppercase and belongs to the known
// universe; that keeps words like "so" or "ma" from matching. A $ prefix
// marks any symbol as a ticker regardless of case. Returns deduplicated
// tickers in order of appearance.
func ExtractTickers(text string) []string {
	known := domain.UniverseSet()

	seen := make(map[string]bool)
	var result []string

	for _, word := range strings.Fields(text) {
		cashtag := strings.HasPrefix(word, "$")
		trimmed := strings.Trim(word, "$.,!?:;()")
		upper := strings.ToUpper(trimmed)
		if len(upper) < 1 || len(upper) > 5 || !isAlpha(upper) {
			continue
		}
		_, inUniverse := known[upper]
		if !cashtag && !(trimmed == upper && inUniverse) {
			continue
		}
		if !seen[upper] {
			seen[upper] = true
			result = append(result, upper)
		}
	}
	return result
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
