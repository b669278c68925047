package generation

import (
	"context"
	"errors"
	"strings"
)

// ErrGenerationFailed wraps every failure raised by a model provider.
var ErrGenerationFailed = errors.New("site generation failed")

// Generator streams the model's answer to prompt, calling onChunk for every
// fragment in order. A non-nil error from onChunk aborts the stream.
type Generator interface {
	Name() string
	GenerateStream(ctx context.Context, prompt string, onChunk func(string) error) error
}

// Collect runs g to completion and concatenates the fragments. Partial
// output is discarded when the stream fails.
func Collect(ctx context.Context, g Generator, prompt string) (string, error) {
	var b strings.Builder
	err := g.GenerateStream(ctx, prompt, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
