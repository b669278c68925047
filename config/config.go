package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Generation GenerationConfig
	Deploy     DeployConfig
	RateLimit  RateLimitConfig
	App        AppConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"300s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig selects the version store. URL wins over the discrete DB_* fields.
type DatabaseConfig struct {
	Driver       string `envconfig:"STORE_DRIVER" default:"postgres"`
	URL          string `envconfig:"DATABASE_URL"`
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         int    `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD"`
	Name         string `envconfig:"DB_NAME" default:"sitegen"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig is optional; without a URL version events stay in-process.
type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type GenerationConfig struct {
	Provider      string        `envconfig:"GENERATION_PROVIDER" default:"openai"`
	Model         string        `envconfig:"GENERATION_MODEL" default:"gpt-4o-mini"`
	APIKey        string        `envconfig:"GENERATION_API_KEY"`
	BaseURL       string        `envconfig:"GENERATION_BASE_URL"`
	Temperature   float32       `envconfig:"GENERATION_TEMPERATURE" default:"0.7"`
	Timeout       time.Duration `envconfig:"GENERATION_TIMEOUT" default:"180s"`
	TemplatesFile string        `envconfig:"GENERATION_TEMPLATES_FILE"`
	PromptLineage string        `envconfig:"GENERATION_PROMPT_LINEAGE" default:"original"`
}

type DeployConfig struct {
	Target          string        `envconfig:"DEPLOY_TARGET" default:"edgeone"`
	Timeout         time.Duration `envconfig:"DEPLOY_TIMEOUT" default:"30s"`
	EdgeOneBaseURL  string        `envconfig:"DEPLOY_EDGEONE_BASE_URL" default:"https://mcp.edgeone.site"`
	S3Bucket        string        `envconfig:"DEPLOY_S3_BUCKET"`
	S3Region        string        `envconfig:"DEPLOY_S3_REGION"`
	S3Prefix        string        `envconfig:"DEPLOY_S3_PREFIX" default:"sites"`
	S3PublicBaseURL string        `envconfig:"DEPLOY_S3_PUBLIC_BASE_URL"`
}

// RateLimitConfig applies per client IP to the two routes that call the model.
type RateLimitConfig struct {
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"0.5"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"3"`
}

type AppConfig struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"sitegen-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv decodes every section from the process environment without
// touching .env files or validating.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	sections := []struct {
		name   string
		target any
	}{
		{"server", &cfg.Server},
		{"database", &cfg.Database},
		{"redis", &cfg.Redis},
		{"generation", &cfg.Generation},
		{"deploy", &cfg.Deploy},
		{"rate limit", &cfg.RateLimit},
		{"app", &cfg.App},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("%s config: %w", s.name, err)
		}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Database.Driver)
	}

	switch strings.ToLower(c.Generation.Provider) {
	case "openai":
		if c.Generation.APIKey == "" {
			return fmt.Errorf("GENERATION_API_KEY is required for the openai provider")
		}
	case "ollama":
		if c.Generation.BaseURL == "" {
			return fmt.Errorf("GENERATION_BASE_URL is required for the ollama provider")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported GENERATION_PROVIDER %q", c.Generation.Provider)
	}

	switch c.Generation.PromptLineage {
	case "original", "chained":
	default:
		return fmt.Errorf("GENERATION_PROMPT_LINEAGE must be original or chained")
	}

	switch strings.ToLower(c.Deploy.Target) {
	case "edgeone":
		if c.Deploy.EdgeOneBaseURL == "" {
			return fmt.Errorf("DEPLOY_EDGEONE_BASE_URL is required")
		}
	case "s3":
		if c.Deploy.S3Bucket == "" || c.Deploy.S3PublicBaseURL == "" {
			return fmt.Errorf("DEPLOY_S3_BUCKET and DEPLOY_S3_PUBLIC_BASE_URL are required for the s3 target")
		}
	default:
		return fmt.Errorf("unsupported DEPLOY_TARGET %q", c.Deploy.Target)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}
