package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/nexly/rag-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Broker / result store
	RedisURL string `env:"REDIS_URL,notEmpty"`

	// Auth gate configuration
	AuthCfg AuthConfig `envPrefix:"AUTH_"`

	// External service configurations
	GenAICfg  GenAIConnectorConfig  `envPrefix:"GENAI_"`
	VectorCfg VectorConnectorConfig `envPrefix:"VECTOR_"`

	// Async chat dispatch
	ChatAsyncCfg ChatAsyncConfig `envPrefix:"CHAT_ASYNC_"`

	// Chunk lookup cache
	ChunkCacheTTL   time.Duration `env:"CHUNK_CACHE_TTL" envDefault:"10m"`
	ChunkCacheSweep time.Duration `env:"CHUNK_CACHE_SWEEP" envDefault:"15m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// AuthConfig holds JWT and API-key settings for the auth gate
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET,notEmpty"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"24h"`
	APIKey     string        `env:"API_KEY"`
	Issuer     string        `env:"ISSUER" envDefault:"rag-backend"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
}

// GenAIConnectorConfig configures the generative text service connector
type GenAIConnectorConfig struct {
	HTTPClientConfig
	Model              string   `env:"MODEL" envDefault:"gemini-2.0-flash"`
	AllowedModels      []string `env:"ALLOWED_MODELS" envDefault:"gemini-2.0-flash,gemini-2.0-flash-lite,gemini-2.5-flash-preview-05-20,gemini-2.5-pro-preview-05-06"`
	DefaultTemperature float64  `env:"DEFAULT_TEMPERATURE" envDefault:"0.4"`
}

// VectorConnectorConfig configures the managed vector index connector
type VectorConnectorConfig struct {
	HTTPClientConfig
	ProjectID       string `env:"PROJECT_ID,notEmpty"`
	Region          string `env:"REGION,notEmpty"`
	IndexEndpointID string `env:"INDEX_ENDPOINT_ID,notEmpty"`
	DeployedIndexID string `env:"DEPLOYED_INDEX_ID,notEmpty"`
	EmbeddingModel  string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	DefaultTopK     int    `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK         int    `env:"MAX_TOP_K" envDefault:"50"`
}

// ChatAsyncConfig configures the queue-backed chat dispatch
type ChatAsyncConfig struct {
	Enabled       bool                 `env:"ENABLED" envDefault:"false"`
	Queue         string               `env:"QUEUE" envDefault:"chat:tasks"`
	ResultPrefix  string               `env:"RESULT_PREFIX" envDefault:"chat:result:"`
	ClaimPrefix   string               `env:"CLAIM_PREFIX" envDefault:"chat:claim:"`
	ResultTimeout time.Duration        `env:"RESULT_TIMEOUT" envDefault:"60s"`
	ResultTTL     time.Duration        `env:"RESULT_TTL" envDefault:"5m"`
	ClaimTTL      time.Duration        `env:"CLAIM_TTL" envDefault:"10m"`
	Workers       int                  `env:"WORKERS" envDefault:"4"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	LoadEnv(*envFlag)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if len(cfg.AuthCfg.JWTSecret) < 32 {
		errs = append(errs, "AUTH_JWT_SECRET must be at least 32 characters long")
	}

	if cfg.AuthCfg.AccessTTL <= 0 {
		errs = append(errs, fmt.Sprintf("AUTH_ACCESS_TTL must be positive, got %s", cfg.AuthCfg.AccessTTL))
	}

	if cfg.AuthCfg.RefreshTTL < cfg.AuthCfg.AccessTTL {
		errs = append(errs, fmt.Sprintf("AUTH_REFRESH_TTL must not be shorter than AUTH_ACCESS_TTL, got %s", cfg.AuthCfg.RefreshTTL))
	}

	if cfg.VectorCfg.DefaultTopK < 1 || cfg.VectorCfg.DefaultTopK > cfg.VectorCfg.MaxTopK {
		errs = append(errs, fmt.Sprintf("VECTOR_DEFAULT_TOP_K must be between 1 and VECTOR_MAX_TOP_K(%d), got %d", cfg.VectorCfg.MaxTopK, cfg.VectorCfg.DefaultTopK))
	}

	if cfg.ChatAsyncCfg.Workers < 1 || cfg.ChatAsyncCfg.Workers > 64 {
		errs = append(errs, fmt.Sprintf("CHAT_ASYNC_WORKERS must be between 1 and 64, got %d", cfg.ChatAsyncCfg.Workers))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsModelAllowed reports whether a caller-supplied model name is in the
// allowed list. An empty name is always allowed and falls back to the default.
func (c *GenAIConnectorConfig) IsModelAllowed(model string) bool {
	if model == "" {
		return true
	}
	for _, m := range c.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

// LoadEnv loads the env file for the given environment into the process
// environment. A missing file is not an error; in containerized/prod
// environments variables are usually set externally.
func LoadEnv(environment string) {
	envFile := getEnvFile(environment)
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
