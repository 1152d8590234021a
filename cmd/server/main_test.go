package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"runradar/internal/bot"
	"runradar/internal/config"
	"runradar/internal/domain"
	"runradar/internal/engine"
	"runradar/internal/job"
	"runradar/internal/service"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewPolygon := newPolygonFunc
	origNewNarrative := newNarrativeFunc
	origStartScanJob := startScanJobFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{RedisURL: "", DatabaseURL: "", ScanIntervalMins: 30, TickerPauseMs: 1}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newPolygonFunc = func(trace.Tracer, string) engine.InstitutionalFetcher { return stubInstFetcher{} }
	newNarrativeFunc = func(trace.Tracer, string, string) engine.NarrativeFetcher { return stubNarrFetcher{} }
	startScanJobFunc = func(*job.ScanJob, context.Context) {}
	startTelegramBotFunc = func(*service.EvaluationService, *service.ScanService, bot.Advisor, int64) *bot.AlertNotifier {
		return nil
	}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newPolygonFunc = origNewPolygon
		newNarrativeFunc = origNewNarrative
		startScanJobFunc = origStartScanJob
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubInstFetcher struct{}

func (stubInstFetcher) FetchInstitutional(ctx context.Context, ticker string) (domain.InstitutionalBundle, error) {
	return domain.InstitutionalBundle{}, nil
}

type stubNarrFetcher struct{}

func (stubNarrFetcher) FetchNarrative(ctx context.Context, ticker string) (domain.NarrativeBundle, error) {
	return domain.NarrativeBundle{}, nil
}
