package main

import (
	"casepilot/internal/cache"
	"casepilot/internal/config"
	"casepilot/internal/repository"
	"casepilot/internal/service"
	"casepilot/internal/transport/rest"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title CasePilot Intake API
// @version 1.0
// @description Lead intake, live answer evaluation and business-case generation
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	log.Printf("AI Config:")
	log.Printf("  Eval model: %s", cfg.AI.Models.Eval)
	log.Printf("  Case model: %s", cfg.AI.Models.Case)
	if cfg.AI.IsEnabled() {
		log.Println("  API Key:    configured")
	} else {
		log.Println("  API Key:    NOT SET (baseline evaluation and mock generation)")
	}
	if !cfg.Mail.IsEnabled() {
		log.Println("Warning: RESEND_API_KEY not set, emails are logged only")
	}
	if !cfg.Render.IsEnabled() {
		log.Println("Warning: RENDER_BASE_URL not set, cases ship without PDFs")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(cfg.RedisAddr, "redis://"),
	})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	draftRepo := repository.NewDraftRepo(db)
	formRepo := repository.NewFormRepo(db)
	caseRepo := repository.NewCaseRepo(db)

	if err := draftRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create draft indexes:", err)
	}

	// Initialize caches
	draftCache := cache.NewDraftCache(rdb)
	evalCache := cache.NewEvalCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.ConsultantEmail, cfg.ConsultantPassword, cfg.JWTSecret)
	mailer := service.NewMailerService(&cfg.Mail)
	generator := service.NewGeneratorService(&cfg.AI)
	renderer := service.NewRendererService(&cfg.Render)
	evaluator := service.NewEvaluatorService(&cfg.AI, formRepo, evalCache, cfg.IntakeFormSlug)
	draftSvc := service.NewDraftService(draftRepo, formRepo, caseRepo, draftCache,
		mailer, generator, renderer, cfg.BaseURL, cfg.IntakeFormSlug)
	caseSvc := service.NewCaseService(caseRepo, mailer)

	router := rest.NewRouter(&rest.Container{
		AuthService:      authSvc,
		DraftService:     draftSvc,
		EvaluatorService: evaluator,
		CaseService:      caseSvc,
		AllowedOrigins:   cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown:", err)
	}
	log.Println("Server stopped")
}
