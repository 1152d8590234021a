package repository

import (
	"context"
	"encoding/json"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const createEvaluationsTable = `
CREATE TABLE IF NOT EXISTS evaluations (
    id                  BIGSERIAL   PRIMARY KEY,
    ticker              TEXT        NOT NULL,
    run_score           INTEGER     NOT NULL,
    verdict             TEXT        NOT NULL,
    institutional_score NUMERIC     NOT NULL,
    narrative_score     NUMERIC     NOT NULL,
    other_score         NUMERIC     NOT NULL,
    result_json         JSONB       NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_evaluations_ticker_time
    ON evaluations (ticker, created_at DESC);
`

// EvaluationRepository persists fused evaluation results. The scalar
// columns exist for querying; the full result survives as JSON.
type EvaluationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewEvaluationRepository(pool PgxPool, tracer trace.Tracer) *EvaluationRepository {
	return &EvaluationRepository{pool: pool, tracer: tracer}
}

func (r *EvaluationRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "evaluation-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createEvaluationsTable)
	return err
}

func (r *EvaluationRepository) InsertEvaluation(ctx context.Context, result domain.EvaluationResult) error {
	_, span := r.tracer.Start(ctx, "evaluation-repo.insert-evaluation")
	defer span.End()

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO evaluations (ticker, run_score, verdict, institutional_score, narrative_score, other_score, result_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.Ticker, result.RunScore, string(result.Verdict),
		result.InstitutionalScore, result.NarrativeScore, result.OtherScore,
		payload, result.Timestamp.UTC(),
	)
	return err
}

// History returns past evaluations for a ticker, newest first.
func (r *EvaluationRepository) History(ctx context.Context, ticker string, limit int) ([]domain.EvaluationResult, error) {
	_, span := r.tracer.Start(ctx, "evaluation-repo.history")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT result_json FROM evaluations WHERE ticker = $1 ORDER BY created_at DESC LIMIT $2`,
		ticker, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.EvaluationResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result domain.EvaluationResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Latest returns the most recent evaluation for a ticker, or nil.
func (r *EvaluationRepository) Latest(ctx context.Context, ticker string) (*domain.EvaluationResult, error) {
	results, err := r.History(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// DeleteOlderThan trims old evaluations past the retention window.
func (r *EvaluationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "evaluation-repo.delete-older-than")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM evaluations WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
