package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rfp-service/internal/ai"
	"rfp-service/internal/ai/gemini"
	"rfp-service/internal/ai/vertex"
	"rfp-service/internal/config"
	"rfp-service/internal/database/minio"
	"rfp-service/internal/database/postgres"
	"rfp-service/internal/database/redis"
	"rfp-service/internal/event"
	"rfp-service/internal/extraction"
	"rfp-service/internal/handlers"
	"rfp-service/internal/repository"
	"rfp-service/internal/services"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/rfp", "log", "rfp_service")
	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func buildProvider(ctx context.Context, cfg *config.RFPServiceConfig) ai.Provider {
	switch cfg.EvaluationCfg.Provider {
	case "vertex":
		provider, err := vertex.NewProvider(ctx, cfg.VertexAICfg)
		if err != nil {
			log.Printf("Failed to initialize Vertex AI provider: %v", err)
			return nil
		}
		return provider
	default:
		provider, err := gemini.NewProvider(ctx, cfg.GeminiAPICfg)
		if err != nil {
			log.Printf("Failed to initialize Gemini provider: %v", err)
			return nil
		}
		return provider
	}
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	// Redis is a hot cache only; the service runs without it.
	var redisClient *goredis.Client
	redisWrapper, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Printf("Failed to connect to Redis, running without result cache: %v", err)
	} else {
		redisClient = redisWrapper.GetClient()
		defer redisWrapper.Close()
	}

	// MinIO backs document text extraction; absence disables it.
	var extractor *extraction.Service
	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		log.Printf("Failed to connect to MinIO, document extraction disabled: %v", err)
	} else {
		extractor = extraction.NewService(minioClient)
	}

	// RabbitMQ carries completion events; publishing is best-effort anyway.
	var publisher *event.NotificationPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("Failed to connect to RabbitMQ, completion events disabled: %v", err)
	} else {
		publisher = event.NewNotificationPublisher(rabbitConn)
		defer rabbitConn.Close()
	}

	provider := buildProvider(context.Background(), cfg)
	if provider == nil {
		log.Printf("No narrative backend available; evaluation runs will fail with CONFIGURATION_ERROR")
	}

	projectRepo := repository.NewProjectRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	inviteRepo := repository.NewRFPInviteRepository(db)
	advisorRepo := repository.NewAdvisorRepository(db)
	policyRepo := repository.NewOrganizationPolicyRepository(db)
	resultRepo := repository.NewEvaluationResultRepository(db, redisClient)

	frameService := services.NewFrameService(projectRepo, proposalRepo, inviteRepo, advisorRepo, policyRepo)
	narrativeService := services.NewNarrativeService(provider, cfg.EvaluationCfg.Timeout, cfg.EvaluationCfg.Locale)
	resultStore := services.NewResultStore(resultRepo)
	evaluationService := services.NewEvaluationService(
		frameService, narrativeService, resultStore, extractor, proposalRepo, publisher)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("RFP service is healthy")
	})

	evaluationHandler := handlers.NewEvaluationHandler(evaluationService, resultStore)
	evaluationHandler.Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")
}
