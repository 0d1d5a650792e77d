package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nexly/rag-backend/internal/api"
	authapi "github.com/nexly/rag-backend/internal/api/auth"
	chatapi "github.com/nexly/rag-backend/internal/api/chat"
	retrievalapi "github.com/nexly/rag-backend/internal/api/retrieval"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/integration/genai"
	"github.com/nexly/rag-backend/internal/integration/vectorsearch"
	"github.com/nexly/rag-backend/internal/pkg/token"
	"github.com/nexly/rag-backend/internal/pkg/validator"
	"github.com/nexly/rag-backend/internal/queue"
	"github.com/nexly/rag-backend/internal/repository"
	authuc "github.com/nexly/rag-backend/internal/usecase/auth"
	chatuc "github.com/nexly/rag-backend/internal/usecase/chat"
	retrievaluc "github.com/nexly/rag-backend/internal/usecase/retrieval"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Setup broker connection
	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setup redis: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserPostgres(db)
	chunkRepo := repository.NewChunkPostgres(db, cfg.ChunkCacheTTL, cfg.ChunkCacheSweep)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var genaiConnector chatuc.GenAIConnector
	var vectorConnector retrievaluc.VectorSearchConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		genaiConnector = genai.NewMockConnector(logger)
		vectorConnector = vectorsearch.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		genaiConnector = genai.NewConnector(cfg.GenAICfg, logger)
		vectorConnector = vectorsearch.NewConnector(cfg.VectorCfg, logger)
	}

	// Initialize auth gate pieces
	tokens := token.NewManager(
		cfg.AuthCfg.JWTSecret,
		cfg.AuthCfg.Issuer,
		cfg.AuthCfg.AccessTTL,
		cfg.AuthCfg.RefreshTTL,
	)
	reqValidator := validator.NewValidator(cfg.VectorCfg)
	logger.Info("Auth gate and validators initialized")

	// Initialize broker
	broker := queue.NewRedisBroker(redisClient, cfg.ChatAsyncCfg, logger)

	// Initialize use cases
	authUC := authuc.NewUsecase(userRepo, tokens, logger)
	chatUC := chatuc.NewUsecase(genaiConnector, broker, cfg.ChatAsyncCfg, cfg.GenAICfg, logger)
	retrievalUC := retrievaluc.NewUsecase(vectorConnector, chunkRepo, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	authHandler := authapi.NewHandler(authUC, reqValidator)
	chatHandler := chatapi.NewHandler(chatUC, reqValidator)
	retrievalHandler := retrievalapi.NewHandler(retrievalUC, reqValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(authHandler, chatHandler, retrievalHandler, tokens, cfg.AuthCfg.APIKey, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// BuildWorker creates the chat task worker process
func BuildWorker() (*WorkerApp, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building chat worker",
		zap.String("environment", cfg.Environment),
	)

	// Setup broker connection
	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}

	// Initialize generation connector (with mock support)
	var genaiConnector queue.Generator
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the text generation service")
		genaiConnector = genai.NewMockConnector(logger)
	} else {
		genaiConnector = genai.NewConnector(cfg.GenAICfg, logger)
	}

	broker := queue.NewRedisBroker(redisClient, cfg.ChatAsyncCfg, logger)
	worker := queue.NewWorker(broker, genaiConnector, cfg.ChatAsyncCfg.Workers, logger)

	logger.Info("Chat worker built successfully",
		zap.String("environment", cfg.Environment),
		zap.Int("workers", cfg.ChatAsyncCfg.Workers),
	)

	return &WorkerApp{
		worker: worker,
		redis:  redisClient,
		logger: logger,
	}, nil
}
