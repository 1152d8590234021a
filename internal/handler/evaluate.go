package handler

import (
	"net/http"
	"strconv"

	"runradar/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// EvaluateTicker godoc
// @Summary      Evaluate a stock's breakout potential
// @Description  Runs the three-pillar fusion evaluation for one ticker and returns the full result
// @Tags         evaluations
// @Produce      json
// @Param        ticker  path  string  true  "Stock ticker (e.g., NVDA, PLTR)"
// @Success      200  {object}  domain.EvaluationResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/evaluate/{ticker} [post]
func (h *Handler) EvaluateTicker(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.evaluate-ticker")
	defer span.End()

	ticker := domain.NormalizeTicker(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	result, err := h.evaluations.Evaluate(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type batchRequest struct {
	Tickers []string `json:"tickers" binding:"required"`
}

// EvaluateBatch godoc
// @Summary      Evaluate several stocks in one request
// @Description  Runs fusion evaluations sequentially with pacing and returns results plus per-ticker errors
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        request  body  batchRequest  true  "Tickers to evaluate"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/evaluate [post]
func (h *Handler) EvaluateBatch(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.evaluate-batch")
	defer span.End()

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a tickers array"})
		return
	}
	if len(req.Tickers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tickers array is empty"})
		return
	}
	span.SetAttributes(attribute.Int("ticker_count", len(req.Tickers)))

	results, errs := h.evaluations.EvaluateBatch(ctx, req.Tickers)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"errors":  errs,
	})
}

// EvaluationHistory godoc
// @Summary      Get stored evaluations for a ticker
// @Description  Returns past evaluation results, newest first
// @Tags         evaluations
// @Produce      json
// @Param        ticker  path   string  true   "Stock ticker"
// @Param        limit   query  int     false  "Max results (default 10, max 100)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/evaluations/{ticker} [get]
func (h *Handler) EvaluationHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.evaluation-history")
	defer span.End()

	ticker := domain.NormalizeTicker(c.Param("ticker"))
	span.SetAttributes(attribute.String("ticker", ticker))

	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	results, err := h.evaluations.History(ctx, ticker, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":      ticker,
		"evaluations": results,
	})
}
