package scanner

import "runradar/internal/domain"

// FilterRecent drops candidates whose ticker was already alerted within the
// dedup window. Pure set difference, order preserving; the recent set is
// supplied by the alert store.
func FilterRecent(candidates []domain.BreakoutStock, recent map[string]bool) (kept []domain.BreakoutStock, suppressed int) {
	kept = make([]domain.BreakoutStock, 0, len(candidates))
	for _, c := range candidates {
		if recent[c.Ticker] {
			suppressed++
			continue
		}
		kept = append(kept, c)
	}
	return kept, suppressed
}
