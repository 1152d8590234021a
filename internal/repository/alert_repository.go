package repository

import (
	"context"
	"time"

	"runradar/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createAlertsTables = `
CREATE TABLE IF NOT EXISTS sent_alerts (
    id                BIGSERIAL   PRIMARY KEY,
    ticker            TEXT        NOT NULL,
    alert_price       NUMERIC     NOT NULL,
    breakout_score    INTEGER     NOT NULL,
    rsi_at_alert      NUMERIC     NOT NULL,
    volume_ratio      NUMERIC     NOT NULL,
    humanized_message TEXT        NOT NULL,
    detected_pattern  TEXT        NOT NULL,
    sent_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sent_alerts_ticker_time
    ON sent_alerts (ticker, sent_at DESC);

CREATE TABLE IF NOT EXISTS alert_performance (
    alert_id        BIGINT      NOT NULL REFERENCES sent_alerts(id),
    measured_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    price           NUMERIC     NOT NULL,
    change_pct      NUMERIC     NOT NULL,
    PRIMARY KEY (alert_id, measured_at)
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AlertRepository persists delivered breakout alerts and serves the
// dedup lookback for the scan service.
type AlertRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAlertRepository(pool PgxPool, tracer trace.Tracer) *AlertRepository {
	return &AlertRepository{pool: pool, tracer: tracer}
}

func (r *AlertRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "alert-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createAlertsTables)
	return err
}

// InsertAlerts records one row per delivered candidate and returns the new
// alert ids in input order, so performance tracking can seed its baselines.
func (r *AlertRepository) InsertAlerts(ctx context.Context, stocks []domain.BreakoutStock, sentAt time.Time) ([]int64, error) {
	if len(stocks) == 0 {
		return nil, nil
	}

	_, span := r.tracer.Start(ctx, "alert-repo.insert-alerts")
	defer span.End()

	batch := &pgx.Batch{}
	for _, s := range stocks {
		batch.Queue(
			`INSERT INTO sent_alerts (ticker, alert_price, breakout_score, rsi_at_alert, volume_ratio, humanized_message, detected_pattern, sent_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			s.Ticker, s.ClosePrice, s.BreakoutScore, s.RSI, s.VolumeRatio, s.HumanizedAlert, s.SetupType, sentAt.UTC(),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	ids := make([]int64, 0, len(stocks))
	for range stocks {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecentTickers returns the set of tickers alerted within the window,
// used to suppress duplicate deliveries.
func (r *AlertRepository) RecentTickers(ctx context.Context, window time.Duration, now time.Time) (map[string]bool, error) {
	_, span := r.tracer.Start(ctx, "alert-repo.recent-tickers")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ticker FROM sent_alerts WHERE sent_at >= $1`,
		now.UTC().Add(-window),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := make(map[string]bool)
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, err
		}
		recent[ticker] = true
	}
	return recent, rows.Err()
}

// ListRecent returns the latest delivered alerts, newest first.
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]domain.SentAlert, error) {
	_, span := r.tracer.Start(ctx, "alert-repo.list-recent")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticker, alert_price, breakout_score, rsi_at_alert, volume_ratio, humanized_message, detected_pattern, sent_at
		 FROM sent_alerts
		 ORDER BY sent_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.SentAlert
	for rows.Next() {
		var a domain.SentAlert
		if err := rows.Scan(&a.ID, &a.Ticker, &a.AlertPrice, &a.BreakoutScore, &a.RSIAtAlert, &a.VolumeRatio, &a.HumanizedMessage, &a.DetectedPattern, &a.SentAt); err != nil {
			return nil, err
		}
		a.SentAt = a.SentAt.UTC()
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// RecordPerformance appends a follow-up price measurement for an alert.
func (r *AlertRepository) RecordPerformance(ctx context.Context, alertID int64, price, changePct float64, measuredAt time.Time) error {
	_, span := r.tracer.Start(ctx, "alert-repo.record-performance")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO alert_performance (alert_id, measured_at, price, change_pct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (alert_id, measured_at) DO NOTHING`,
		alertID, measuredAt.UTC(), price, changePct,
	)
	return err
}

// ListPerformance returns the latest measurement per alert joined with the
// alert it tracks, newest alerts first.
func (r *AlertRepository) ListPerformance(ctx context.Context, limit int) ([]domain.AlertPerformance, error) {
	_, span := r.tracer.Start(ctx, "alert-repo.list-performance")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (p.alert_id)
		        p.alert_id, a.ticker, a.alert_price, a.breakout_score, a.sent_at,
		        p.price, p.change_pct, p.measured_at
		 FROM alert_performance p
		 JOIN sent_alerts a ON a.id = p.alert_id
		 ORDER BY p.alert_id DESC, p.measured_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []domain.AlertPerformance
	for rows.Next() {
		var p domain.AlertPerformance
		if err := rows.Scan(&p.AlertID, &p.Ticker, &p.AlertPrice, &p.BreakoutScore, &p.SentAt, &p.LatestPrice, &p.ChangePct, &p.MeasuredAt); err != nil {
			return nil, err
		}
		p.SentAt = p.SentAt.UTC()
		p.MeasuredAt = p.MeasuredAt.UTC()
		perf = append(perf, p)
	}
	return perf, rows.Err()
}
