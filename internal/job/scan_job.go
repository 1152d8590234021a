package job

import (
	"context"
	"log"
	"time"

	"runradar/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type ScanRunner interface {
	RunScan(ctx context.Context) (domain.ScanRunResult, error)
}

// ScanJob runs the market-wide breakout scan on a fixed interval.
type ScanJob struct {
	tracer       trace.Tracer
	runner       ScanRunner
	pollInterval time.Duration
}

func NewScanJob(tracer trace.Tracer, runner ScanRunner, pollInterval time.Duration) *ScanJob {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Minute
	}
	return &ScanJob{tracer: tracer, runner: runner, pollInterval: pollInterval}
}

// Start blocks until ctx is cancelled.
func (j *ScanJob) Start(ctx context.Context) {
	if j.runner == nil {
		log.Println("Scan job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *ScanJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "scan-job.run-once")
	defer span.End()

	result, err := j.runner.RunScan(ctx)
	if err != nil {
		log.Printf("Scan cycle error: %v", err)
		return
	}
	if len(result.Candidates) > 0 || len(result.Errors) > 0 {
		log.Printf(
			"Scan cycle complete scanned=%d candidates=%d delivered=%d suppressed=%d warnings=%d",
			result.Scanned,
			len(result.Candidates),
			result.Delivered,
			result.Suppressed,
			len(result.Errors),
		)
	}
}
