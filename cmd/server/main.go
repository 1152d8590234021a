package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runradar/internal/advisor"
	"runradar/internal/bot"
	"runradar/internal/cache"
	"runradar/internal/config"
	"runradar/internal/db"
	"runradar/internal/engine"
	"runradar/internal/handler"
	"runradar/internal/job"
	"runradar/internal/provider"
	"runradar/internal/repository"
	"runradar/internal/scanner"
	"runradar/internal/service"
	"runradar/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "runradar/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newAlertRepoFunc    = repository.NewAlertRepository
	newEvalRepoFunc     = repository.NewEvaluationRepository
	newConvRepoFunc     = repository.NewConversationRepository
	newPolygonFunc      = func(tracer trace.Tracer, apiKey string) engine.InstitutionalFetcher {
		return provider.NewPolygonProvider(tracer, apiKey)
	}
	newNarrativeFunc = func(tracer trace.Tracer, xToken, newsKey string) engine.NarrativeFetcher {
		return provider.NewNarrativeProvider(tracer, xToken, newsKey)
	}
	newYahooFunc           = provider.NewYahooProvider
	newEngineFunc          = engine.New
	newScannerFunc         = scanner.New
	newEvalServiceFunc     = service.NewEvaluationService
	newScanServiceFunc     = service.NewScanService
	newScanJobFunc         = job.NewScanJob
	startScanJobFunc       = func(j *job.ScanJob, ctx context.Context) { go j.Start(ctx) }
	newOpenAIClientFunc    = advisor.NewOpenAIClient
	newAdvisorServiceFunc  = advisor.NewAdvisorService
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           RunRadar API
// @version         1.0
// @description     Stock breakout evaluation and scanning service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	alertRepo := newAlertRepoFunc(db.Pool, tracer)
	evalRepo := newEvalRepoFunc(db.Pool, tracer)
	convRepo := newConvRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := alertRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run alert migrations: %v", err)
		}
		if err := evalRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run evaluation migrations: %v", err)
		}
		if err := convRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run conversation migrations: %v", err)
		}
	}

	// Providers
	polygon := newPolygonFunc(tracer, cfg.PolygonAPIKey)
	narrative := newNarrativeFunc(tracer, cfg.XBearerToken, cfg.NewsAPIKey)
	yahoo := newYahooFunc(tracer)

	tickerPause := time.Duration(cfg.TickerPauseMs) * time.Millisecond

	// Fusion engine and evaluation service
	eng := newEngineFunc(tracer, polygon, narrative, yahoo, tickerPause)

	var evalStore service.EvaluationStore
	if db.Pool != nil {
		evalStore = evalRepo
	}
	evalService := newEvalServiceFunc(tracer, eng, evalStore, cache.Client)

	// Breakout scanner and scan service
	universe := provider.NewStaticUniverse(cfg.ScanUniverse)
	breakoutScanner := newScannerFunc(tracer, universe, yahoo, tickerPause)

	var alertStore service.AlertStore
	if db.Pool != nil {
		alertStore = alertRepo
	}
	scanService := newScanServiceFunc(tracer, breakoutScanner, alertStore, nil)

	// Advisor (optional)
	var advisorSvc bot.Advisor
	if cfg.OpenAIAPIKey != "" {
		llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey)
		advisorSvc = newAdvisorServiceFunc(tracer, llmClient, evalService, scanService,
			convRepo, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
		log.Println("Advisor service enabled")
	}

	// Telegram bot; its notifier closes the loop back into the scan service
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	notifier := startTelegramBotFunc(evalService, scanService, advisorSvc, cfg.TelegramChatID)
	if notifier != nil {
		scanService.SetNotifier(notifier)
	}

	// Periodic scan job
	scanJob := newScanJobFunc(tracer, scanService, time.Duration(cfg.ScanIntervalMins)*time.Minute)
	startScanJobFunc(scanJob, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, evalService, scanService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("runradar"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
