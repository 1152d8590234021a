package handler

import (
	"context"

	"runradar/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// EvaluationAPI is the slice of the evaluation service the HTTP layer needs.
type EvaluationAPI interface {
	Evaluate(ctx context.Context, ticker string) (domain.EvaluationResult, error)
	EvaluateBatch(ctx context.Context, tickers []string) ([]domain.EvaluationResult, []string)
	History(ctx context.Context, ticker string, limit int) ([]domain.EvaluationResult, error)
}

// ScanAPI is the slice of the scan service the HTTP layer needs.
type ScanAPI interface {
	RunScan(ctx context.Context) (domain.ScanRunResult, error)
	RecentAlerts(ctx context.Context, limit int) ([]domain.SentAlert, error)
	AlertPerformance(ctx context.Context, limit int) ([]domain.AlertPerformance, error)
}

type Handler struct {
	tracer      trace.Tracer
	evaluations EvaluationAPI
	scans       ScanAPI
}

func New(tracer trace.Tracer, evaluations EvaluationAPI, scans ScanAPI) *Handler {
	return &Handler{
		tracer:      tracer,
		evaluations: evaluations,
		scans:       scans,
	}
}

// RegisterRoutes mounts the API. Health stays open; everything under /api is
// gated by the key when one is configured.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.POST("/evaluate/:ticker", h.EvaluateTicker)
	api.POST("/evaluate", h.EvaluateBatch)
	api.GET("/evaluations/:ticker", h.EvaluationHistory)
	api.POST("/scan/run", h.TriggerScanRun)
	api.GET("/alerts", h.RecentAlerts)
	api.GET("/alerts/performance", h.AlertPerformance)
}
