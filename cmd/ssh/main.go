package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"runradar/internal/advisor"
	"runradar/internal/cache"
	"runradar/internal/config"
	"runradar/internal/db"
	"runradar/internal/engine"
	"runradar/internal/provider"
	"runradar/internal/repository"
	"runradar/internal/service"
	"runradar/internal/tui"
	"runradar/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const sshUserKey ctxKey = "ssh_user"

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer

	newAlertRepoFunc   = repository.NewAlertRepository
	newEvalRepoFunc    = repository.NewEvaluationRepository
	newSSHUserRepoFunc = repository.NewSSHUserRepository
	newConvRepoFunc    = repository.NewConversationRepository

	newPolygonFunc = func(tracer trace.Tracer, apiKey string) engine.InstitutionalFetcher {
		return provider.NewPolygonProvider(tracer, apiKey)
	}
	newNarrativeFunc = func(tracer trace.Tracer, xToken, newsKey string) engine.NarrativeFetcher {
		return provider.NewNarrativeProvider(tracer, xToken, newsKey)
	}
	newYahooFunc       = provider.NewYahooProvider
	newEngineFunc      = engine.New
	newEvalServiceFunc = service.NewEvaluationService
	newScanServiceFunc = service.NewScanService

	newOpenAIClientFunc   = advisor.NewOpenAIClient
	newAdvisorServiceFunc = advisor.NewAdvisorService

	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

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

	// Create repositories
	alertRepo := newAlertRepoFunc(db.Pool, tracer)
	evalRepo := newEvalRepoFunc(db.Pool, tracer)
	sshUserRepo := newSSHUserRepoFunc(db.Pool, tracer)
	convRepo := newConvRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := sshUserRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run ssh user migrations: %v", err)
		}
	}

	// Providers, engine, services
	polygon := newPolygonFunc(tracer, cfg.PolygonAPIKey)
	narrative := newNarrativeFunc(tracer, cfg.XBearerToken, cfg.NewsAPIKey)
	yahoo := newYahooFunc(tracer)

	eng := newEngineFunc(tracer, polygon, narrative, yahoo, time.Duration(cfg.TickerPauseMs)*time.Millisecond)

	var evalStore service.EvaluationStore
	var alertStore service.AlertStore
	if db.Pool != nil {
		evalStore = evalRepo
		alertStore = alertRepo
	}
	evalService := newEvalServiceFunc(tracer, eng, evalStore, cache.Client)
	scanService := newScanServiceFunc(tracer, nil, alertStore, nil)

	// Advisor (optional)
	var advisorSvc *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey)
		advisorSvc = newAdvisorServiceFunc(tracer, llmClient, evalService, scanService,
			convRepo, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
		log.Println("SSH advisor service enabled")
	}

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			user, err := sshUserRepo.FindByFingerprint(context.Background(), fingerprint)
			if err != nil || user == nil {
				log.Printf("SSH auth denied: fingerprint=%s err=%v", fingerprint, err)
				return false
			}
			ctx.SetValue(sshUserKey, user)
			_ = sshUserRepo.UpdateLastLogin(context.Background(), user.ID)
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", user.Username, fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				user, _ := s.Context().Value(sshUserKey).(*repository.SSHUser)

				username := "unknown"
				var userID int64
				if user != nil {
					username = user.Username
					userID = user.ID
				}

				var advisorQ tui.AdvisorQuerier
				if advisorSvc != nil {
					advisorQ = advisorSvc
				}

				svc := tui.Services{
					Evaluations: evalService,
					Alerts:      scanService,
					Advisor:     advisorQ,
					UserID:      userID,
					Username:    username,
				}

				model := tui.NewAppModel(svc)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
