package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/orchid-lms/orchid-go-api/internal/config"
	"github.com/orchid-lms/orchid-go-api/internal/database"
	"github.com/orchid-lms/orchid-go-api/internal/events"
	"github.com/orchid-lms/orchid-go-api/internal/handler"
	"github.com/orchid-lms/orchid-go-api/internal/middleware"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/internal/repository"
	"github.com/orchid-lms/orchid-go-api/internal/router"
	"github.com/orchid-lms/orchid-go-api/internal/service"
	"github.com/orchid-lms/orchid-go-api/pkg/ai"
	"github.com/orchid-lms/orchid-go-api/pkg/extract"
	"github.com/orchid-lms/orchid-go-api/pkg/similarity"
	"github.com/orchid-lms/orchid-go-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizSubmission{},
		&models.QuizAnswer{},
		&models.Assignment{},
		&models.AssignmentSubmission{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, extraction cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, events publish to redis only")
	}

	uploader, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	var generator ai.Generator
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openaiGenerator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create question generator: %v", err)
		}
		generator = openaiGenerator
	}

	var scorer similarity.Scorer
	if cfg.SimilarityCommand != "" {
		scorer, err = similarity.NewProcessScorer(cfg.SimilarityCommand, logger)
		if err != nil {
			log.Fatalf("failed to create similarity scorer: %v", err)
		}
	} else {
		scorer = similarity.NewCosineScorer()
	}
	scorer = similarity.WithTimeout(scorer, cfg.SimilarityTimeout)

	validate := validator.New(validator.WithRequiredStructEnabled())
	recorder := events.NewRecorder(redisClient, natsConn, cfg.EventSubjectBase, logger)
	extractor := extract.New(logger)
	fetcher := storage.NewFetcher(30 * time.Second)

	quizRepo := repository.NewQuizRepository(db)
	quizSubmissionRepo := repository.NewQuizSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	assignmentSubmissionRepo := repository.NewAssignmentSubmissionRepository(db)

	quizService, err := service.NewQuizService(quizRepo, generator, validate, logger)
	if err != nil {
		log.Fatalf("failed to create quiz service: %v", err)
	}
	quizSubmissionService := service.NewQuizSubmissionService(quizRepo, quizSubmissionRepo, validate, recorder, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	assignmentSubmissionService := service.NewAssignmentSubmissionService(assignmentSubmissionRepo, assignmentRepo, validate, uploader, recorder, logger)
	plagiarismService := service.NewPlagiarismService(assignmentSubmissionRepo, extractor, fetcher, scorer, redisClient, cfg.ExtractCacheTTL, cfg.ExtractWorkers, recorder, logger)

	healthHandler := handler.NewHealthHandler(cfg.AppName, cfg.AppEnv)
	quizHandler := handler.NewQuizHandler(quizService, validate, logger)
	quizSubmissionHandler := handler.NewQuizSubmissionHandler(quizSubmissionService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	assignmentSubmissionHandler := handler.NewAssignmentSubmissionHandler(assignmentSubmissionService, logger)
	plagiarismHandler := handler.NewPlagiarismHandler(plagiarismService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:               healthHandler,
		QuizHandler:                 quizHandler,
		QuizSubmissionHandler:       quizSubmissionHandler,
		AssignmentHandler:           assignmentHandler,
		AssignmentSubmissionHandler: assignmentSubmissionHandler,
		PlagiarismHandler:           plagiarismHandler,
		JWTMiddleware:               middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
