package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/ai"
	"github.com/smartprep/interview-server-go/internal/config"
	"github.com/smartprep/interview-server-go/internal/database"
	"github.com/smartprep/interview-server-go/internal/handler"
	"github.com/smartprep/interview-server-go/internal/jobs"
	"github.com/smartprep/interview-server-go/internal/middleware"
	"github.com/smartprep/interview-server-go/internal/redis"
	"github.com/smartprep/interview-server-go/internal/repository"
	"github.com/smartprep/interview-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)
	usageRepo := repository.NewUsageRepository(db.DB)

	aiClient := ai.NewClient(cfg.OpenRouterURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	generator := ai.NewGenerator(aiClient)
	transcriber := ai.NewTranscriber(cfg.MLServiceURL)

	guard := service.NewUsageGuard(usageRepo, config.AIUsageLimits)
	interviewService := service.NewInterviewService(db, sessionRepo, questionRepo, generator, guard)
	sessionService := service.NewSessionService(db, sessionRepo, questionRepo, generator, guard)
	questionService := service.NewQuestionService(interviewService, questionRepo, generator, guard)

	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	audioBodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxAudioUploadBytes)

	sessionHandler := handler.NewSessionHandler(sessionService)
	interviewHandler := handler.NewInterviewHandler(interviewService)
	questionHandler := handler.NewQuestionHandler(questionService)
	audioHandler := handler.NewAudioHandler(transcriber)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)

		r.Group(func(r chi.Router) {
			r.Use(bodyLimitMiddleware.Handler)
			r.Mount("/sessions", sessionHandler.Routes())
			r.Mount("/interview", interviewHandler.Routes())
			r.Mount("/questions", questionHandler.Routes())
			r.Post("/ai/explain", questionHandler.Explain)
		})

		r.Group(func(r chi.Router) {
			r.Use(audioBodyLimitMiddleware.Handler)
			r.Mount("/audio", audioHandler.Routes())
		})
	})

	cleanupJob := jobs.NewCleanupJob(questionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
