package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"runradar/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const evaluationCacheTTL = 15 * time.Minute

// Evaluator produces fused evaluations; implemented by the engine.
type Evaluator interface {
	Evaluate(ctx context.Context, ticker string) (domain.EvaluationResult, error)
	EvaluateBatch(ctx context.Context, tickers []string) ([]domain.EvaluationResult, []string)
}

// EvaluationStore persists evaluation results.
type EvaluationStore interface {
	InsertEvaluation(ctx context.Context, result domain.EvaluationResult) error
	History(ctx context.Context, ticker string, limit int) ([]domain.EvaluationResult, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// EvaluationService fronts the engine with a short-lived Redis cache and
// writes every fresh result through to Postgres.
type EvaluationService struct {
	tracer    trace.Tracer
	evaluator Evaluator
	store     EvaluationStore
	redis     RedisClient
}

func NewEvaluationService(tracer trace.Tracer, evaluator Evaluator, store EvaluationStore, redisClient RedisClient) *EvaluationService {
	return &EvaluationService{
		tracer:    tracer,
		evaluator: evaluator,
		store:     store,
		redis:     redisClient,
	}
}

// Evaluate returns a cached result when fresh, otherwise runs the engine
// and persists the outcome.
func (s *EvaluationService) Evaluate(ctx context.Context, ticker string) (domain.EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation-service.evaluate")
	defer span.End()

	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return domain.EvaluationResult{}, fmt.Errorf("ticker is required")
	}

	if s.redis != nil {
		cached, err := s.getCache(ctx, ticker)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	result, err := s.evaluator.Evaluate(ctx, ticker)
	if err != nil {
		return domain.EvaluationResult{}, err
	}

	if s.redis != nil {
		if err := s.setCache(ctx, result); err != nil {
			log.Printf("redis cache write error for %s: %v", ticker, err)
		}
	}
	if s.store != nil {
		if err := s.store.InsertEvaluation(ctx, result); err != nil {
			log.Printf("persist evaluation for %s: %v", ticker, err)
		}
	}
	return result, nil
}

// EvaluateBatch runs the engine over all tickers, persisting each success.
// Cached results are not consulted: a batch is an explicit refresh.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, tickers []string) ([]domain.EvaluationResult, []string) {
	ctx, span := s.tracer.Start(ctx, "evaluation-service.evaluate-batch")
	defer span.End()

	results, errs := s.evaluator.EvaluateBatch(ctx, tickers)
	for _, result := range results {
		if s.redis != nil {
			_ = s.setCache(ctx, result)
		}
		if s.store != nil {
			if err := s.store.InsertEvaluation(ctx, result); err != nil {
				errs = append(errs, fmt.Sprintf("persist %s: %v", result.Ticker, err))
			}
		}
	}
	return results, errs
}

// History returns persisted evaluations for a ticker, newest first.
func (s *EvaluationService) History(ctx context.Context, ticker string, limit int) ([]domain.EvaluationResult, error) {
	_, span := s.tracer.Start(ctx, "evaluation-service.history")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("evaluation history requires Postgres")
	}
	return s.store.History(ctx, domain.NormalizeTicker(ticker), limit)
}

func (s *EvaluationService) setCache(ctx context.Context, result domain.EvaluationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "evaluation:"+result.Ticker, data, evaluationCacheTTL).Err()
}

func (s *EvaluationService) getCache(ctx context.Context, ticker string) (*domain.EvaluationResult, error) {
	data, err := s.redis.Get(ctx, "evaluation:"+ticker).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
