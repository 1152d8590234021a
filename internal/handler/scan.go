package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TriggerScanRun godoc
// @Summary      Trigger a breakout scan manually
// @Description  Runs one scan cycle over the universe and returns candidates plus delivery counters
// @Tags         scan
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/scan/run [post]
func (h *Handler) TriggerScanRun(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-scan-run")
	defer span.End()

	result, err := h.scans.RunScan(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"scanned":    result.Scanned,
		"candidates": result.Candidates,
		"delivered":  result.Delivered,
		"suppressed": result.Suppressed,
		"errors":     result.Errors,
	})
}

// RecentAlerts godoc
// @Summary      List recently sent breakout alerts
// @Description  Returns the latest alerts recorded by the scanner, newest first
// @Tags         scan
// @Produce      json
// @Param        limit  query  int  false  "Max alerts (default 20, max 100)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts [get]
func (h *Handler) RecentAlerts(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.recent-alerts")
	defer span.End()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	alerts, err := h.scans.RecentAlerts(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// AlertPerformance godoc
// @Summary      List alert performance since delivery
// @Description  Returns the latest follow-up price measurement per sent alert
// @Tags         scan
// @Produce      json
// @Param        limit  query  int  false  "Max alerts (default 20, max 100)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts/performance [get]
func (h *Handler) AlertPerformance(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.alert-performance")
	defer span.End()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	perf, err := h.scans.AlertPerformance(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": perf})
}
