package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"runradar/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type evaluatorStub struct {
	calls   int
	result  domain.EvaluationResult
	err     error
	batches [][]string
}

func (e *evaluatorStub) Evaluate(_ context.Context, ticker string) (domain.EvaluationResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EvaluationResult{}, e.err
	}
	result := e.result
	result.Ticker = ticker
	return result, nil
}

func (e *evaluatorStub) EvaluateBatch(ctx context.Context, tickers []string) ([]domain.EvaluationResult, []string) {
	e.batches = append(e.batches, tickers)
	results := make([]domain.EvaluationResult, 0, len(tickers))
	for _, t := range tickers {
		result, err := e.Evaluate(ctx, t)
		if err != nil {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

type evaluationStoreStub struct {
	inserted  []domain.EvaluationResult
	insertErr error
	history   []domain.EvaluationResult
}

func (s *evaluationStoreStub) InsertEvaluation(_ context.Context, result domain.EvaluationResult) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, result)
	return nil
}

func (s *evaluationStoreStub) History(_ context.Context, ticker string, limit int) ([]domain.EvaluationResult, error) {
	return s.history, nil
}

func TestEvaluationServiceCacheHitSkipsEngine(t *testing.T) {
	t.Parallel()

	cached := domain.EvaluationResult{Ticker: "NVDA", RunScore: 88, Verdict: domain.VerdictHighPotential}
	data, _ := json.Marshal(cached)
	rc := newFakeRedis()
	_ = rc.Set(context.Background(), "evaluation:NVDA", data, 0)

	engine := &evaluatorStub{}
	svc := NewEvaluationService(testTracer, engine, &evaluationStoreStub{}, rc)

	got, err := svc.Evaluate(context.Background(), "nvda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RunScore != 88 {
		t.Fatalf("expected cached score, got %d", got.RunScore)
	}
	if engine.calls != 0 {
		t.Fatalf("expected no engine call on cache hit, got %d", engine.calls)
	}
}

func TestEvaluationServiceMissRunsEngineAndPersists(t *testing.T) {
	t.Parallel()

	engine := &evaluatorStub{result: domain.EvaluationResult{RunScore: 70, Verdict: domain.VerdictModerate}}
	store := &evaluationStoreStub{}
	rc := newFakeRedis()
	svc := NewEvaluationService(testTracer, engine, store, rc)

	got, err := svc.Evaluate(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Ticker != "AAPL" {
		t.Fatalf("unexpected ticker %q", got.Ticker)
	}
	if engine.calls != 1 {
		t.Fatalf("expected one engine call, got %d", engine.calls)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected persistence, got %d inserts", len(store.inserted))
	}
	if _, ok := rc.data["evaluation:AAPL"]; !ok {
		t.Fatal("result not cached")
	}
}

func TestEvaluationServiceSurvivesPersistenceFailure(t *testing.T) {
	t.Parallel()

	engine := &evaluatorStub{result: domain.EvaluationResult{RunScore: 55}}
	store := &evaluationStoreStub{insertErr: errors.New("db down")}
	svc := NewEvaluationService(testTracer, engine, store, nil)

	got, err := svc.Evaluate(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("a failed insert must not fail the evaluation: %v", err)
	}
	if got.RunScore != 55 {
		t.Fatalf("unexpected score %d", got.RunScore)
	}
}

func TestEvaluationServiceRejectsBlankTicker(t *testing.T) {
	t.Parallel()

	svc := NewEvaluationService(testTracer, &evaluatorStub{}, nil, nil)
	if _, err := svc.Evaluate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank ticker")
	}
}

func TestEvaluationServiceBatchPersistsEachResult(t *testing.T) {
	t.Parallel()

	engine := &evaluatorStub{result: domain.EvaluationResult{RunScore: 60}}
	store := &evaluationStoreStub{}
	svc := NewEvaluationService(testTracer, engine, store, newFakeRedis())

	results, errs := svc.EvaluateBatch(context.Background(), []string{"AAPL", "MSFT"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(results) != 2 || len(store.inserted) != 2 {
		t.Fatalf("expected two results persisted, got %d/%d", len(results), len(store.inserted))
	}
}

func TestEvaluationServiceHistoryRequiresStore(t *testing.T) {
	t.Parallel()

	svc := NewEvaluationService(testTracer, &evaluatorStub{}, nil, nil)
	if _, err := svc.History(context.Background(), "AAPL", 5); err == nil {
		t.Fatal("expected error without a store")
	}

	store := &evaluationStoreStub{history: []domain.EvaluationResult{{Ticker: "AAPL"}}}
	svc = NewEvaluationService(testTracer, &evaluatorStub{}, store, nil)
	results, err := svc.History(context.Background(), "AAPL", 5)
	if err != nil || len(results) != 1 {
		t.Fatalf("unexpected history result: %v %v", results, err)
	}
}
