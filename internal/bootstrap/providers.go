package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/deploy"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/generation"
)

// NewGenerator builds the model client named by cfg.Provider.
func NewGenerator(cfg *config.GenerationConfig, log *zap.Logger) (generation.Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return generation.NewOpenAIGenerator(generation.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, log), nil
	case "ollama":
		return generation.NewOllamaGenerator(generation.OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, log)
	case "static":
		return generation.StaticGenerator{}, nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}

// NewTemplates loads prompt overrides from cfg.TemplatesFile, or the
// built-in templates when no file is configured.
func NewTemplates(cfg *config.GenerationConfig) (*generation.Templates, error) {
	if cfg.TemplatesFile == "" {
		return generation.DefaultTemplates(), nil
	}
	return generation.LoadTemplates(cfg.TemplatesFile)
}

// NewPublisher builds the deployment target named by cfg.Target.
func NewPublisher(ctx context.Context, cfg *config.DeployConfig) (deploy.Publisher, error) {
	switch strings.ToLower(cfg.Target) {
	case "edgeone":
		return deploy.NewEdgeOnePublisher(cfg.EdgeOneBaseURL, cfg.Timeout), nil
	case "s3":
		return deploy.NewS3Publisher(ctx, deploy.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported deploy target %q", cfg.Target)
	}
}
