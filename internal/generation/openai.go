package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures any OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	log         *zap.Logger
}

func NewOpenAIGenerator(cfg OpenAIConfig, log *zap.Logger) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	// No overall client timeout: long streams are bounded by ctx instead.
	clientCfg.HTTPClient = &http.Client{}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		log:         log,
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) GenerateStream(ctx context.Context, prompt string, onChunk func(string) error) error {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		Stream:      true,
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: create stream: %w", ErrGenerationFailed, err)
	}
	defer stream.Close()

	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read stream: %w", ErrGenerationFailed, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			chunks++
			if err := onChunk(content); err != nil {
				return err
			}
		}
	}

	g.log.Debug("openai stream finished", zap.String("model", g.model), zap.Int("chunks", chunks))
	return nil
}
