package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float32
}

type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float32
	log         *zap.Logger
}

func NewOllamaGenerator(cfg OllamaConfig, log *zap.Logger) (*OllamaGenerator, error) {
	// api.NewClient expects the server root, not the OpenAI-compatible /v1 path.
	base := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url %q: %w", cfg.BaseURL, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OllamaGenerator{
		client:      api.NewClient(u, http.DefaultClient),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		log:         log,
	}, nil
}

func (g *OllamaGenerator) Name() string { return "ollama" }

func (g *OllamaGenerator) GenerateStream(ctx context.Context, prompt string, onChunk func(string) error) error {
	stream := true
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature": g.temperature,
		},
	}

	var doneReason string
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			if err := onChunk(resp.Message.Content); err != nil {
				return err
			}
		}
		if resp.Done {
			doneReason = resp.DoneReason
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: ollama chat: %w", ErrGenerationFailed, err)
	}

	if doneReason != "" && doneReason != "stop" {
		g.log.Warn("ollama stream ended early", zap.String("model", g.model), zap.String("reason", doneReason))
	}
	return nil
}
