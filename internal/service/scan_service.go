package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"runradar/internal/domain"
	"runradar/internal/scanner"

	"go.opentelemetry.io/otel/trace"
)

const (
	dedupWindow    = 7 * 24 * time.Hour
	maxDeliveries  = 5
	recentAlertCap = 20
)

// BreakoutScanner runs one full market pass; implemented by the scanner.
type BreakoutScanner interface {
	Scan(ctx context.Context) ([]domain.BreakoutStock, int, []string, error)
}

// AlertStore persists delivered alerts, answers the dedup lookback, and
// keeps follow-up performance measurements per alert.
type AlertStore interface {
	InsertAlerts(ctx context.Context, stocks []domain.BreakoutStock, sentAt time.Time) ([]int64, error)
	RecentTickers(ctx context.Context, window time.Duration, now time.Time) (map[string]bool, error)
	ListRecent(ctx context.Context, limit int) ([]domain.SentAlert, error)
	RecordPerformance(ctx context.Context, alertID int64, price, changePct float64, measuredAt time.Time) error
	ListPerformance(ctx context.Context, limit int) ([]domain.AlertPerformance, error)
}

// AlertNotifier delivers alert text to subscribers.
type AlertNotifier interface {
	NotifyAlert(ctx context.Context, stock domain.BreakoutStock) error
}

// ScanService runs the scan, suppresses recently alerted tickers, persists
// and delivers the survivors.
type ScanService struct {
	tracer   trace.Tracer
	scanner  BreakoutScanner
	store    AlertStore
	notifier AlertNotifier
	now      func() time.Time
}

func NewScanService(tracer trace.Tracer, breakoutScanner BreakoutScanner, store AlertStore, notifier AlertNotifier) *ScanService {
	return &ScanService{
		tracer:   tracer,
		scanner:  breakoutScanner,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetNotifier wires delivery after construction. The bot needs the scan
// service for its commands, so the notifier arrives late.
func (s *ScanService) SetNotifier(notifier AlertNotifier) {
	s.notifier = notifier
}

// RunScan executes one full scan pass. Candidates stay in the result even
// when suppressed from delivery; only the delivered subset is persisted.
func (s *ScanService) RunScan(ctx context.Context) (domain.ScanRunResult, error) {
	ctx, span := s.tracer.Start(ctx, "scan-service.run-scan")
	defer span.End()

	candidates, scanned, errs, err := s.scanner.Scan(ctx)
	if err != nil {
		return domain.ScanRunResult{}, err
	}
	result := domain.ScanRunResult{Scanned: scanned, Candidates: candidates, Errors: errs}

	now := s.now().UTC()
	recent := map[string]bool{}
	if s.store != nil {
		recent, err = s.store.RecentTickers(ctx, dedupWindow, now)
		if err != nil {
			result.Errors = append(result.Errors, "recent_tickers: "+err.Error())
			recent = map[string]bool{}
		}
	}

	deliverable, suppressed := scanner.FilterRecent(candidates, recent)
	result.Suppressed = suppressed
	if len(deliverable) > maxDeliveries {
		deliverable = deliverable[:maxDeliveries]
	}

	if s.store != nil && len(deliverable) > 0 {
		ids, err := s.store.InsertAlerts(ctx, deliverable, now)
		if err != nil {
			result.Errors = append(result.Errors, "insert_alerts: "+err.Error())
		}
		// Seed the performance baseline at the alert price; the follow-up
		// measurements arrive from later scans against the same alert id.
		for i, id := range ids {
			if i >= len(deliverable) {
				break
			}
			if err := s.store.RecordPerformance(ctx, id, deliverable[i].ClosePrice, 0, now); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("record_performance:%s: %v", deliverable[i].Ticker, err))
			}
		}
	}

	for _, stock := range deliverable {
		if s.notifier == nil {
			break
		}
		if err := s.notifier.NotifyAlert(ctx, stock); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("notify:%s: %v", stock.Ticker, err))
			continue
		}
		result.Delivered++
	}

	log.Printf("Scan complete: %d scanned, %d candidates, %d delivered, %d suppressed",
		result.Scanned, len(result.Candidates), result.Delivered, result.Suppressed)
	return result, nil
}

// RecentAlerts returns the latest delivered alerts for the API surface.
func (s *ScanService) RecentAlerts(ctx context.Context, limit int) ([]domain.SentAlert, error) {
	_, span := s.tracer.Start(ctx, "scan-service.recent-alerts")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("alert history requires Postgres")
	}
	if limit <= 0 || limit > recentAlertCap {
		limit = recentAlertCap
	}
	return s.store.ListRecent(ctx, limit)
}

// AlertPerformance returns the latest follow-up measurement per delivered
// alert for the API surface.
func (s *ScanService) AlertPerformance(ctx context.Context, limit int) ([]domain.AlertPerformance, error) {
	_, span := s.tracer.Start(ctx, "scan-service.alert-performance")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("performance history requires Postgres")
	}
	if limit <= 0 || limit > recentAlertCap {
		limit = recentAlertCap
	}
	return s.store.ListPerformance(ctx, limit)
}
