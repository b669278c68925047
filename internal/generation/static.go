package generation

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// StaticGenerator answers every prompt with a small fixed page. It lets the
// API run without a model for local development and demos.
type StaticGenerator struct{}

func (StaticGenerator) Name() string { return "static" }

func (StaticGenerator) GenerateStream(ctx context.Context, prompt string, onChunk func(string) error) error {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Preview</title>
</head>
<body>
    <main>
        <h1>Preview site</h1>
        <pre>%s</pre>
    </main>
</body>
</html>`, html.EscapeString(firstLine(prompt)))

	for _, line := range strings.SplitAfter(page, "\n") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onChunk(line); err != nil {
			return err
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
